package frame

import (
	"strings"
	"testing"
)

// TestReadCSV тестирует чтение CSV с выводом типов.
func TestReadCSV(t *testing.T) {
	input := `transactionID,accountID,transactionAmount,timestamp,comment
1,acc-1,79.99,1700000000,ok
2,acc-2,100,1700000060,
3,acc-1,5.5,1700000120,chargeback?`

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Типизация: int64 → float64 → string
	first := rows[0]
	if got, ok := first["transactionID"].(int64); !ok || got != 1 {
		t.Errorf("transactionID: got %v (%T), want int64 1", first["transactionID"], first["transactionID"])
	}
	if got, ok := first["transactionAmount"].(float64); !ok || got != 79.99 {
		t.Errorf("transactionAmount: got %v (%T), want float64 79.99", first["transactionAmount"], first["transactionAmount"])
	}
	if got, ok := first["accountID"].(string); !ok || got != "acc-1" {
		t.Errorf("accountID: got %v (%T), want string acc-1", first["accountID"], first["accountID"])
	}

	// Целое без точки остаётся int64, не float64
	if got, ok := rows[1]["transactionAmount"].(int64); !ok || got != 100 {
		t.Errorf("integer amount: got %v (%T), want int64 100", rows[1]["transactionAmount"], rows[1]["transactionAmount"])
	}

	// Пустая ячейка — пустая строка
	if got := rows[1]["comment"]; got != "" {
		t.Errorf("empty cell: got %v (%T), want empty string", got, got)
	}
}

// TestReadCSV_Order тестирует что порядок строк файла сохраняется.
func TestReadCSV_Order(t *testing.T) {
	input := `id
third
first
second`

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"third", "first", "second"}
	for i, w := range want {
		if rows[i]["id"] != w {
			t.Errorf("row %d: got %v, want %s", i, rows[i]["id"], w)
		}
	}
}

// TestReadCSV_Errors тестирует ошибки формата.
func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"field count mismatch", "a,b\n1,2,3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestReadCSV_HeaderOnly тестирует файл без записей.
func TestReadCSV_HeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,b,c\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

// TestInferValue тестирует вывод типов из текста ячейки.
func TestInferValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"1e3", 1000.0},
		{"hello", "hello"},
		{"", ""},
		{"12abc", "12abc"},
	}

	for _, tt := range tests {
		if got := inferValue(tt.input); got != tt.want {
			t.Errorf("inferValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
		}
	}
}

// TestColumns тестирует сбор имён полей.
func TestColumns(t *testing.T) {
	input := `a,b
1,2
3,4`

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cols := Columns(rows)
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %v", cols)
	}

	seen := map[string]bool{}
	for _, c := range cols {
		seen[c] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("columns: got %v", cols)
	}
}
