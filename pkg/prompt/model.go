// Структуры данных - описывает формат YAML файла промпта.
package prompt

// PromptFile описывает структуру YAML-файла с промптом
type PromptFile struct {
	Config   PromptConfig `yaml:"config"`
	Dataset  string       `yaml:"dataset"`  // Идентификатор датасета для резолва плейсхолдеров
	System   string       `yaml:"system"`   // Системное сообщение для LLM (опционально)
	Template string       `yaml:"template"` // Шаблон с плейсхолдерами {name}
}

// PromptConfig - настройки модели для конкретного промпта
type PromptConfig struct {
	Model       string  `yaml:"model"` // Алиас модели из config.yaml (например "glm-4.5")
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Format      string  `yaml:"format"` // "json_object" или text
}
