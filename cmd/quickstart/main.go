// quickstart — сквозной туториал FeatMill SDK.
//
// Проходит весь путь из README:
//  1. Загружает CSV с транзакциями
//  2. Регистрирует датасет на платформе (existsOK=true)
//  3. Регистрирует timestamp колонку
//  4. Объявляет rolling SUM фичу за 24 часа
//  5. Запускает материализацию
//  6. Читает значения фичей для первых строк и печатает их
//
// Использование:
//
//	./quickstart -csv transactions.csv -dataset tx_data
//
// config.yaml должен находиться рядом с бинарником.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilkoid/featmill/pkg/cache"
	"github.com/ilkoid/featmill/pkg/config"
	"github.com/ilkoid/featmill/pkg/featmill"
	"github.com/ilkoid/featmill/pkg/frame"
	"github.com/ilkoid/featmill/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "путь к config.yaml")
	csvPath := flag.String("csv", "transactions.csv", "CSV с исходными данными")
	datasetID := flag.String("dataset", "tx_data", "идентификатор датасета")
	keyField := flag.String("key", "transactionID", "поле уникального ключа")
	preview := flag.Int("preview", 5, "сколько строк показать после retrieve")
	flag.Parse()

	// 1. Инициализируем логгер
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Starting quickstart", "version", Version)

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// 2. Грузим конфиг
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// 3. Создаём клиента платформы
	client, err := featmill.NewFromConfig(cfg.FeatMill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🚀 FeatMill Quickstart")
	fmt.Println()

	// 4. Загружаем CSV
	fmt.Printf("📄 Loading %s...\n", *csvPath)
	rows, err := frame.LoadCSV(*csvPath)
	if err != nil {
		fail(client, err, "CSV loading failed")
	}
	fmt.Printf("   %d rows, columns: %v\n", len(rows), frame.Columns(rows))

	// 5. Регистрируем датасет (existsOK: повторный запуск туториала не падает)
	fmt.Printf("📦 Registering dataset %q (key: %s)...\n", *datasetID, *keyField)
	ds, err := client.CreateDataset(ctx, *datasetID, *keyField, rows, true)
	if err != nil {
		fail(client, err, "Dataset registration failed")
	}
	fmt.Printf("   dataset %q: %d rows on platform\n", ds.ID, ds.RowCount)

	// 6. Регистрируем timestamp колонку
	fmt.Println("🕒 Registering timestamp column...")
	if err := client.RegisterTimestamp(ctx, ds.ID, "timestamp", featmill.TimestampEpochSeconds); err != nil {
		fail(client, err, "Timestamp registration failed")
	}

	// 7. Объявляем rolling SUM фичу за 24 часа
	featureSpec := featmill.FeatureSpec{
		Name:            "my_sum_feat_24h",
		Column:          "transactionAmount",
		GroupBy:         "accountID",
		Operation:       featmill.OpSum,
		TimestampColumn: "timestamp",
		WindowSize:      24,
		WindowUnit:      featmill.WindowHours,
	}

	fmt.Printf("📐 Declaring feature %q (%s of %s by %s, %d %s)...\n",
		featureSpec.Name, featureSpec.Operation, featureSpec.Column,
		featureSpec.GroupBy, featureSpec.WindowSize, featureSpec.WindowUnit)
	if err := client.CreateAggregateFeature(ctx, ds.ID, featureSpec); err != nil {
		fail(client, err, "Feature declaration failed")
	}

	// 8. Запускаем материализацию
	fmt.Println("⚙️  Materializing...")
	if err := client.MaterializeFeatures(ctx, ds.ID, []string{featureSpec.Name}); err != nil {
		fail(client, err, "Materialization failed")
	}

	// Платформе нужно мгновение чтобы прогнать исторические данные
	time.Sleep(2 * time.Second)

	// 9. Читаем значения фичей для первых строк
	n := *preview
	if n > len(rows) {
		n = len(rows)
	}

	fmt.Printf("🔍 Retrieving features for first %d rows...\n", n)
	augmented, err := client.RetrieveFeatures(ctx, ds.ID, rows[:n])
	if err != nil {
		fail(client, err, "Feature retrieval failed")
	}

	fmt.Println()
	for i, row := range augmented {
		fmt.Printf("  #%d %s=%v  %s=%v\n",
			i, *keyField, row[*keyField], featureSpec.Name, row[featureSpec.Name])
	}
	fmt.Println()

	// 10. Кэшируем результат для offline работы (опционально)
	if cfg.App.CachePath != "" {
		store, err := cache.Open(cfg.App.CachePath)
		if err != nil {
			utils.Warn("Cache open failed, skipping", "error", err)
		} else {
			defer store.Close()
			if err := store.PutRows(ctx, ds.ID, ds.KeyField, augmented); err != nil {
				utils.Warn("Cache write failed", "error", err)
			} else {
				fmt.Printf("💾 Cached %d rows to %s\n", len(augmented), cfg.App.CachePath)
			}
		}
	}

	fmt.Println("✅ Done")
	utils.Info("Quickstart finished", "dataset", ds.ID, "rows", len(rows))
}

// fail печатает человекочитаемую диагностику и завершает процесс.
func fail(client *featmill.Client, err error, msg string) {
	errType := client.ClassifyError(err)
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	fmt.Fprintf(os.Stderr, "   %s\n", errType.HumanMessage())
	utils.Error(msg, "error", err, "type", errType.String())
	utils.Close()
	os.Exit(1)
}
