// Загрузка - чтение YAML файла и компиляция шаблона.

package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load загружает и парсит YAML файл промпта
func Load(path string) (*PromptFile, error) {
	// 1. Проверяем наличие
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("prompt file not found: %s", path)
	}

	// 2. Читаем байты
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	// 3. Парсим YAML
	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}

	return &pf, nil
}

// Compile собирает Template из загруженного файла.
//
// Возвращает ошибку если шаблон или датасет не заданы, либо шаблон
// синтаксически некорректен.
func (pf *PromptFile) Compile() (*Template, error) {
	if pf.Template == "" {
		return nil, fmt.Errorf("prompt file has empty template")
	}
	if pf.Dataset == "" {
		return nil, fmt.Errorf("prompt file has empty dataset")
	}

	tmpl, err := New(pf.Template, pf.Dataset)
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}

	return tmpl, nil
}
