package prompt

import (
	"strings"
	"testing"

	"github.com/ilkoid/featmill/pkg/featmill"
)

// TestNew тестирует компиляцию шаблонов.
func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		template     string
		wantErr      bool
		placeholders []string
	}{
		{
			name:         "single placeholder",
			template:     "Amount: {amt}",
			placeholders: []string{"amt"},
		},
		{
			name:         "multiple placeholders",
			template:     "Tx {transactionID} by {accountID}: {my_sum_feat_24h}",
			placeholders: []string{"transactionID", "accountID", "my_sum_feat_24h"},
		},
		{
			name:         "repeated placeholder counted once",
			template:     "{a} and {a} and {b}",
			placeholders: []string{"a", "b"},
		},
		{
			name:         "no placeholders",
			template:     "plain text",
			placeholders: nil,
		},
		{
			name:         "escaped braces are literals",
			template:     "json: {{\"k\": 1}}",
			placeholders: nil,
		},
		{
			name:     "unterminated placeholder",
			template: "Amount: {amt",
			wantErr:  true,
		},
		{
			name:     "empty placeholder",
			template: "Amount: {}",
			wantErr:  true,
		},
		{
			name:     "unmatched closing brace",
			template: "oops }",
			wantErr:  true,
		},
		{
			name:     "placeholder with space",
			template: "{my feat}",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.template, "tx_data")

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for template %q", tt.template)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := tmpl.Placeholders()
			if len(got) != len(tt.placeholders) {
				t.Fatalf("placeholders: got %v, want %v", got, tt.placeholders)
			}
			for i := range got {
				if got[i] != tt.placeholders[i] {
					t.Errorf("placeholder %d: got %q, want %q", i, got[i], tt.placeholders[i])
				}
			}
		})
	}
}

// TestNew_EmptyDataset тестирует что пустой dataset id отклоняется.
func TestNew_EmptyDataset(t *testing.T) {
	if _, err := New("Amount: {amt}", ""); err == nil {
		t.Fatal("expected error for empty dataset id")
	}
}

// TestRenderRow тестирует подстановку значений.
func TestRenderRow(t *testing.T) {
	tests := []struct {
		name     string
		template string
		row      featmill.Row
		want     string
		wantErr  string
	}{
		{
			name:     "float value",
			template: "Amount: {amt}",
			row:      featmill.Row{"amt": 79.99},
			want:     "Amount: 79.99",
		},
		{
			name:     "int and string values",
			template: "Tx {id} by {account}",
			row:      featmill.Row{"id": int64(42), "account": "acc-7"},
			want:     "Tx 42 by acc-7",
		},
		{
			name:     "literal text untouched",
			template: "a {x} b {{c}} d",
			row:      featmill.Row{"x": 1},
			want:     "a 1 b {c} d",
		},
		{
			name:     "extra row fields ignored",
			template: "{a}",
			row:      featmill.Row{"a": 1, "b": 2, "c": 3},
			want:     "1",
		},
		{
			name:     "missing placeholder is hard failure",
			template: "Amount: {amt}",
			row:      featmill.Row{"other": 1},
			wantErr:  `placeholder "amt" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.template, "tx_data")
			if err != nil {
				t.Fatalf("compile: %v", err)
			}

			got, err := tmpl.RenderRow(tt.row)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRender_OrderAndLength тестирует выравнивание входа и выхода.
func TestRender_OrderAndLength(t *testing.T) {
	tmpl, err := New("{id}", "tx_data")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	rows := []featmill.Row{
		{"id": "first"},
		{"id": "second"},
		{"id": "third"},
	}

	out, err := tmpl.Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// Одна строка на вход, в том же порядке
	if len(out) != len(rows) {
		t.Fatalf("got %d outputs for %d rows", len(out), len(rows))
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("output %d: got %q, want %q", i, out[i], want[i])
		}
	}
}

// TestRender_EmptyInput тестирует что пустой вход даёт пустой выход.
func TestRender_EmptyInput(t *testing.T) {
	tmpl, err := New("Amount: {amt}", "tx_data")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := tmpl.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}

// TestRender_MissingPlaceholderAbortsBatch тестирует политику "весь батч или ничего".
func TestRender_MissingPlaceholderAbortsBatch(t *testing.T) {
	tmpl, err := New("Amount: {amt}", "tx_data")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	rows := []featmill.Row{
		{"amt": 1.0},
		{"other": 2.0}, // нет amt — валит весь батч
		{"amt": 3.0},
	}

	out, err := tmpl.Render(rows)
	if err == nil {
		t.Fatal("expected error for row with missing placeholder")
	}
	if out != nil {
		t.Fatalf("expected nil output on failure, got %v", out)
	}
	// Ошибка должна называть индекс проблемной строки
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("error %q does not name failing row index", err)
	}
}

// TestTemplate_Immutability тестирует что Placeholders возвращает копию.
func TestTemplate_Immutability(t *testing.T) {
	tmpl, err := New("{a} {b}", "tx_data")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ph := tmpl.Placeholders()
	ph[0] = "mutated"

	if got := tmpl.Placeholders()[0]; got != "a" {
		t.Errorf("internal placeholder list mutated: got %q", got)
	}
}
