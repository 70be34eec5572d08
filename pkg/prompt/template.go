// Package prompt предоставляет шаблоны промптов с плейсхолдерами {name}.
//
// Template — иммутабельная связка шаблона и идентификатора датасета, против
// которого резолвятся плейсхолдеры. Создаётся один раз, рендерится многократно:
// чистая функция от набора строк, без состояния и без внешних вызовов
// (retrieve фичей — отдельный предшествующий шаг, см. pkg/featmill).
package prompt

import (
	"fmt"
	"strings"

	"github.com/ilkoid/featmill/pkg/featmill"
)

// segment — кусок разобранного шаблона: либо литерал, либо плейсхолдер.
type segment struct {
	literal     string // Заполнено если это литеральный текст
	placeholder string // Заполнено если это плейсхолдер {name}
}

// Template — скомпилированный шаблон промпта.
//
// Иммутабелен после New: держит исходный текст, идентификатор датасета и
// разобранный список сегментов. Thread-safe (только чтение).
type Template struct {
	raw          string
	datasetID    string
	segments     []segment
	placeholders []string // Уникальные имена плейсхолдеров в порядке появления
}

// New компилирует шаблон с плейсхолдерами вида {name}.
//
// Параметры:
//   - template: текст шаблона, например "Amount: {transactionAmount}, 24h sum: {my_sum_feat_24h}"
//   - datasetID: датасет, против которого резолвятся плейсхолдеры
//
// Литеральные фигурные скобки экранируются удвоением: "{{" → "{", "}}" → "}".
// Возвращает ошибку на незакрытый или пустой плейсхолдер.
func New(template string, datasetID string) (*Template, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id is required")
	}

	t := &Template{
		raw:       template,
		datasetID: datasetID,
	}

	seen := make(map[string]bool)
	var literal strings.Builder

	for i := 0; i < len(template); {
		ch := template[i]

		switch {
		case ch == '{' && i+1 < len(template) && template[i+1] == '{':
			// Экранированная скобка
			literal.WriteByte('{')
			i += 2

		case ch == '}' && i+1 < len(template) && template[i+1] == '}':
			literal.WriteByte('}')
			i += 2

		case ch == '{':
			// Начало плейсхолдера: ищем закрывающую скобку
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
			}

			name := template[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("empty placeholder at offset %d", i)
			}
			if strings.ContainsAny(name, "{ \t\n") {
				return nil, fmt.Errorf("invalid placeholder name %q at offset %d", name, i)
			}

			// Сбрасываем накопленный литерал
			if literal.Len() > 0 {
				t.segments = append(t.segments, segment{literal: literal.String()})
				literal.Reset()
			}

			t.segments = append(t.segments, segment{placeholder: name})
			if !seen[name] {
				seen[name] = true
				t.placeholders = append(t.placeholders, name)
			}

			i += end + 2

		case ch == '}':
			return nil, fmt.Errorf("unmatched '}' at offset %d", i)

		default:
			literal.WriteByte(ch)
			i++
		}
	}

	if literal.Len() > 0 {
		t.segments = append(t.segments, segment{literal: literal.String()})
	}

	return t, nil
}

// Raw возвращает исходный текст шаблона.
func (t *Template) Raw() string { return t.raw }

// DatasetID возвращает идентификатор датасета, к которому привязан шаблон.
func (t *Template) DatasetID() string { return t.datasetID }

// Placeholders возвращает уникальные имена плейсхолдеров в порядке появления.
func (t *Template) Placeholders() []string {
	// Копия, чтобы вызывающий не мог сломать иммутабельность
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// RenderRow рендерит шаблон для одной строки.
//
// Каждый плейсхолдер заменяется значением одноимённого поля строки
// (форматирование через %v). Отсутствие поля — жёсткая ошибка: никаких
// дефолтов и молчаливых пропусков.
func (t *Template) RenderRow(row featmill.Row) (string, error) {
	var b strings.Builder

	for _, seg := range t.segments {
		if seg.placeholder == "" {
			b.WriteString(seg.literal)
			continue
		}

		val, ok := row[seg.placeholder]
		if !ok {
			return "", fmt.Errorf("placeholder %q not found in row", seg.placeholder)
		}

		fmt.Fprintf(&b, "%v", val)
	}

	return b.String(), nil
}

// Render рендерит шаблон для каждой строки набора.
//
// Гарантии:
//   - одна выходная строка на одну входную, в том же порядке
//   - пустой вход → пустой выход
//   - отсутствующий плейсхолдер в любой строке отменяет ВЕСЬ батч:
//     промпты идут в LLM в порядке строк, частичный результат сломал бы
//     выравнивание строка↔промпт, которое гарантирует retrieve
func (t *Template) Render(rows []featmill.Row) ([]string, error) {
	out := make([]string, 0, len(rows))

	for i, row := range rows {
		s, err := t.RenderRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, s)
	}

	return out, nil
}
