package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfig создаёт временный config.yaml для теста.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad тестирует загрузку полной конфигурации.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
featmill:
  api_key: "test_key"
  base_url: "https://api.test.local"
  rate_limit: 60
  timeout: "10s"

models:
  default_chat: "glm-4.5"
  definitions:
    glm-4.5:
      provider: "zai"
      model_name: "glm-4.5"
      api_key: "llm_key"
      max_tokens: 4096
      temperature: 0.7
      timeout: 60s

s3:
  endpoint: "minio.local:9000"
  bucket: "featmill-staging"

app:
  debug: true
  cache_path: ".featmill-cache.db"

datasets:
  transactions:
    id: "tx_data"
    key_field: "transactionID"
    timestamp: "timestamp"
    source: "transactions.csv"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.FeatMill.APIKey != "test_key" {
		t.Errorf("api key: got %q", cfg.FeatMill.APIKey)
	}
	if cfg.FeatMill.RateLimit != 60 {
		t.Errorf("rate limit: got %d", cfg.FeatMill.RateLimit)
	}
	if cfg.S3.Bucket != "featmill-staging" {
		t.Errorf("s3 bucket: got %q", cfg.S3.Bucket)
	}
	if !cfg.App.Debug {
		t.Error("app.debug not parsed")
	}

	ds, ok := cfg.Datasets["transactions"]
	if !ok {
		t.Fatal("datasets.transactions not parsed")
	}
	if ds.ID != "tx_data" || ds.KeyField != "transactionID" {
		t.Errorf("dataset: got %+v", ds)
	}

	def, ok := cfg.Models.Definitions["glm-4.5"]
	if !ok {
		t.Fatal("model definition not parsed")
	}
	if def.Timeout != 60*time.Second {
		t.Errorf("model timeout: got %v", def.Timeout)
	}
}

// TestLoad_EnvExpansion тестирует подстановку ${VAR} из окружения.
func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_FEATMILL_KEY", "secret-from-env")

	path := writeConfig(t, `
featmill:
  api_key: "${TEST_FEATMILL_KEY}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FeatMill.APIKey != "secret-from-env" {
		t.Errorf("api key: got %q, want value from env", cfg.FeatMill.APIKey)
	}
}

// TestLoad_Validation тестирует отклонение невалидных конфигов.
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing api key",
			content: "featmill:\n  base_url: \"https://x\"\n",
		},
		{
			name:    "bad timeout",
			content: "featmill:\n  api_key: \"k\"\n  timeout: \"never\"\n",
		},
		{
			name:    "dataset without id",
			content: "featmill:\n  api_key: \"k\"\ndatasets:\n  tx:\n    key_field: \"id\"\n",
		},
		{
			name:    "dataset without key field",
			content: "featmill:\n  api_key: \"k\"\ndatasets:\n  tx:\n    id: \"tx_data\"\n",
		},
		{
			name:    "broken yaml",
			content: "featmill: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestLoad_FileNotFound тестирует отсутствующий файл.
func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Fatal("expected error")
	}
}

// TestGetDefaults тестирует применение дефолтов к пустым полям.
func TestGetDefaults(t *testing.T) {
	cfg := FeatMillConfig{APIKey: "k"}
	got := cfg.GetDefaults()

	if got.BaseURL == "" {
		t.Error("base url default not applied")
	}
	if got.RateLimit == 0 || got.BurstLimit == 0 || got.RetryAttempts == 0 {
		t.Error("rate/burst/retry defaults not applied")
	}
	if got.UploadChunk != 1000 || got.RetrieveChunk != 500 {
		t.Errorf("chunk defaults: got %d/%d", got.UploadChunk, got.RetrieveChunk)
	}

	// Явные значения не перетираются
	custom := FeatMillConfig{APIKey: "k", RateLimit: 10, UploadChunk: 50}
	got = custom.GetDefaults()
	if got.RateLimit != 10 || got.UploadChunk != 50 {
		t.Errorf("explicit values overwritten: %d/%d", got.RateLimit, got.UploadChunk)
	}
}

// TestGetModelDef тестирует выбор модели по алиасу.
func TestGetModelDef(t *testing.T) {
	cfg := &AppConfig{
		Models: ModelsConfig{
			DefaultChat: "glm-4.5",
			Definitions: map[string]ModelDef{
				"glm-4.5":  {Provider: "zai", ModelName: "glm-4.5"},
				"deepseek": {Provider: "deepseek", ModelName: "deepseek-chat"},
			},
		},
	}

	// Пустой алиас — default_chat
	def, err := cfg.GetModelDef("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.ModelName != "glm-4.5" {
		t.Errorf("default model: got %q", def.ModelName)
	}

	// Явный алиас
	def, err = cfg.GetModelDef("deepseek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Provider != "deepseek" {
		t.Errorf("provider: got %q", def.Provider)
	}

	// Неизвестный алиас
	if _, err := cfg.GetModelDef("gpt-99"); err == nil {
		t.Error("expected error for unknown alias")
	}

	// Пустой алиас без default_chat
	empty := &AppConfig{}
	if _, err := empty.GetModelDef(""); err == nil {
		t.Error("expected error when default_chat is empty")
	}
}
