package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру твоего config.yaml.
type AppConfig struct {
	FeatMill FeatMillConfig           `yaml:"featmill"`
	Models   ModelsConfig             `yaml:"models"`
	S3       S3Config                 `yaml:"s3"`
	App      AppSpecific              `yaml:"app"`
	Datasets map[string]DatasetConfig `yaml:"datasets"` // Преднастроенные датасеты для демо утилит
}

// FeatMillConfig — настройки подключения к feature-платформе.
//
// Платформа — внешний сервис: мы только регистрируем датасеты, объявляем
// фичи и читаем online store. Вся математика (rolling агрегаты, anomaly
// detection) происходит на стороне backend.
type FeatMillConfig struct {
	APIKey        string `yaml:"api_key"`        // Поддерживает ${FEATMILL_API_KEY}
	BaseURL       string `yaml:"base_url"`       // Базовый URL платформы
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
	UploadChunk   int    `yaml:"upload_chunk"`   // Строк на один запрос загрузки
	RetrieveChunk int    `yaml:"retrieve_chunk"` // Строк на один запрос retrieve
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *FeatMillConfig) GetDefaults() FeatMillConfig {
	result := *c // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = "https://api.featmill.dev"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 120 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}
	if result.UploadChunk == 0 {
		result.UploadChunk = 1000
	}
	if result.RetrieveChunk == 0 {
		result.RetrieveChunk = 500
	}

	return result
}

// DatasetConfig — описание датасета для демо утилит (cmd/quickstart и т.д.).
//
// Это конфигурация, а не схема: схему данных владеет платформа.
type DatasetConfig struct {
	ID        string `yaml:"id"`        // Идентификатор датасета на платформе
	KeyField  string `yaml:"key_field"` // Уникальный ключ записи (например "transactionID")
	Timestamp string `yaml:"timestamp"` // Колонка с временной меткой
	Source    string `yaml:"source"`    // Локальный CSV или ключ в S3 с исходными данными
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас для чата по умолчанию (например, "glm-4.5")
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "zai", "openai" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`  // Go умеет парсить строки вида "60s", "1m"
	BaseURL     string        `yaml:"base_url"` // Для non-OpenAI провайдеров
}

// S3Config — настройки объектного хранилища (staging исходных CSV).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"`
	CachePath  string `yaml:"cache_path"` // Путь к sqlite файлу локального кэша фичей
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.FeatMill.APIKey == "" {
		return fmt.Errorf("featmill.api_key is required (set FEATMILL_API_KEY)")
	}

	// Таймаут должен парситься, если указан
	if c.FeatMill.Timeout != "" {
		if _, err := time.ParseDuration(c.FeatMill.Timeout); err != nil {
			return fmt.Errorf("invalid featmill.timeout: %w", err)
		}
	}

	// У каждого преднастроенного датасета должен быть id и ключ
	for name, ds := range c.Datasets {
		if ds.ID == "" {
			return fmt.Errorf("datasets.%s.id is required", name)
		}
		if ds.KeyField == "" {
			return fmt.Errorf("datasets.%s.key_field is required", name)
		}
	}

	return nil
}

// GetModelDef возвращает определение модели по алиасу.
//
// Если alias пустой — используется models.default_chat.
func (c *AppConfig) GetModelDef(alias string) (ModelDef, error) {
	if alias == "" {
		alias = c.Models.DefaultChat
	}
	if alias == "" {
		return ModelDef{}, fmt.Errorf("no model alias given and models.default_chat is empty")
	}

	def, ok := c.Models.Definitions[alias]
	if !ok {
		return ModelDef{}, fmt.Errorf("model %q not found in models.definitions", alias)
	}

	return def, nil
}
