// prompt-llm — собирает промпты из значений фичей и отправляет их в LLM.
//
// Туториал "features → prompts → model" в виде утилиты:
//  1. Загружает YAML файл промпта (шаблон + датасет + настройки модели)
//  2. Читает значения фичей для указанных ключей из online store
//     (или из локального кэша с флагом -offline)
//  3. Рендерит по одному промпту на строку
//  4. Отправляет каждый промпт в LLM и печатает ответы
//
// Использование:
//
//	./prompt-llm -prompt prompts/fraud_check.yaml 41 42 43
//
// Ключи (значения key-поля датасета) передаются аргументами.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilkoid/featmill/pkg/cache"
	"github.com/ilkoid/featmill/pkg/config"
	"github.com/ilkoid/featmill/pkg/factory"
	"github.com/ilkoid/featmill/pkg/featmill"
	"github.com/ilkoid/featmill/pkg/llm"
	"github.com/ilkoid/featmill/pkg/prompt"
	"github.com/ilkoid/featmill/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "путь к config.yaml")
	promptPath := flag.String("prompt", "prompts/fraud_check.yaml", "YAML файл промпта")
	offline := flag.Bool("offline", false, "читать строки из локального кэша вместо платформы")
	flag.Parse()

	keys := flag.Args()
	if len(keys) == 0 {
		fmt.Println("Usage: prompt-llm [-offline] -prompt <file.yaml> <key> [key...]")
		os.Exit(1)
	}

	// 1. Инициализируем логгер
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Starting prompt-llm", "version", Version, "keys", len(keys))

	// 2. Грузим конфиг
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Config load error: %v", err)
	}

	// 3. Грузим и компилируем промпт
	pf, err := prompt.Load(*promptPath)
	if err != nil {
		fatal("Prompt load error: %v", err)
	}

	tmpl, err := pf.Compile()
	if err != nil {
		fatal("Prompt compile error: %v", err)
	}

	fmt.Printf("📝 Template for dataset %q, placeholders: %v\n", tmpl.DatasetID(), tmpl.Placeholders())

	// 4. Находим key-поле датасета в конфиге
	keyField := ""
	for _, ds := range cfg.Datasets {
		if ds.ID == tmpl.DatasetID() {
			keyField = ds.KeyField
			break
		}
	}
	if keyField == "" {
		fatal("Dataset %q not found in config datasets section", tmpl.DatasetID())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	// 5. Получаем строки с фичами
	rows, err := fetchRows(ctx, cfg, tmpl.DatasetID(), keyField, keys, *offline)
	if err != nil {
		fatal("Row fetch error: %v", err)
	}

	// 6. Рендерим промпты (жёстко: отсутствующий плейсхолдер валит весь батч)
	prompts, err := tmpl.Render(rows)
	if err != nil {
		fatal("Render error: %v", err)
	}

	// 7. Создаём LLM провайдера
	modelDef, err := cfg.GetModelDef(pf.Config.Model)
	if err != nil {
		fatal("Model config error: %v", err)
	}

	provider, err := factory.NewLLMProvider(modelDef)
	if err != nil {
		fatal("Provider init error: %v", err)
	}

	fmt.Printf("🤖 Using model: %s (provider: %s)\n\n", modelDef.ModelName, modelDef.Provider)

	// 8. Отправляем промпты по одному, в порядке строк
	for i, p := range prompts {
		fmt.Printf("── key=%s ──\n", keys[i])
		fmt.Printf("prompt: %s\n", p)

		messages := []llm.Message{}
		if pf.System != "" {
			messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: pf.System})
		}
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: p})

		answer, err := provider.Chat(ctx, llm.ChatRequest{
			Model:       modelDef.ModelName,
			Temperature: pf.Config.Temperature,
			MaxTokens:   pf.Config.MaxTokens,
			Format:      pf.Config.Format,
			Messages:    messages,
		})
		if err != nil {
			fmt.Printf("❌ llm error: %v\n\n", err)
			continue
		}

		if pf.Config.Format == "json_object" {
			answer = utils.CleanJsonBlock(answer)
		}
		fmt.Printf("answer: %s\n\n", answer)
	}

	utils.Info("prompt-llm finished", "prompts", len(prompts))
}

// fetchRows получает строки с фичами: из платформы или из локального кэша.
func fetchRows(ctx context.Context, cfg *config.AppConfig, datasetID string, keyField string, keys []string, offline bool) ([]featmill.Row, error) {
	if offline {
		if cfg.App.CachePath == "" {
			return nil, fmt.Errorf("offline mode requires app.cache_path in config")
		}

		store, err := cache.Open(cfg.App.CachePath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		rows := make([]featmill.Row, 0, len(keys))
		for _, key := range keys {
			row, err := store.GetRow(ctx, datasetID, key)
			if errors.Is(err, cache.ErrRowNotFound) {
				return nil, fmt.Errorf("key %q not in cache, run quickstart first", key)
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	// Online: читаем из платформы
	client, err := featmill.NewFromConfig(cfg.FeatMill)
	if err != nil {
		return nil, err
	}

	input := make([]featmill.Row, len(keys))
	for i, key := range keys {
		input[i] = featmill.Row{keyField: key}
	}

	return client.RetrieveFeatures(ctx, datasetID, input)
}

// fatal печатает ошибку и завершает процесс.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	utils.Error(fmt.Sprintf(format, args...))
	utils.Close()
	os.Exit(1)
}
