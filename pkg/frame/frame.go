// Package frame загружает локальные табличные данные в строки датасета.
//
// Это минимальный аналог dataframe для туториалов: CSV файл превращается в
// []featmill.Row с простым выводом типов по колонкам. Никакой обработки
// данных здесь нет — всё, что сложнее чтения файла, делает платформа.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ilkoid/featmill/pkg/featmill"
)

// LoadCSV читает CSV файл и возвращает строки датасета.
//
// Первая строка файла — заголовок с именами полей.
// Порядок строк файла сохраняется.
func LoadCSV(path string) ([]featmill.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	return rows, nil
}

// ReadCSV читает CSV из reader и возвращает строки датасета.
//
// Значения типизируются по содержимому: int64 → float64 → string.
// Пустая ячейка остаётся пустой строкой — решение об отсутствии значения
// принимает платформа, а не загрузчик.
func ReadCSV(r io.Reader) ([]featmill.Row, error) {
	reader := csv.NewReader(r)

	// 1. Читаем заголовок
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// 2. Читаем записи
	var rows []featmill.Row
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record at line %d: %w", line+1, err)
		}
		line++

		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(header))
		}

		row := make(featmill.Row, len(header))
		for i, name := range header {
			row[name] = inferValue(record[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// inferValue превращает текст ячейки в типизированное значение.
//
// Порядок попыток: int64, float64, строка как есть.
func inferValue(s string) any {
	if s == "" {
		return ""
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

// Columns возвращает множество имён полей набора строк.
//
// Удобно для быстрой сверки с плейсхолдерами шаблона перед рендером.
func Columns(rows []featmill.Row) []string {
	seen := make(map[string]bool)
	var out []string

	for _, row := range rows {
		for name := range row {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}

	return out
}
