// feature-monitor — TUI для наблюдения за значениями фичей в реальном времени.
//
// Монитор периодически опрашивает online store для набора ключей и
// показывает текущие значения фичей. С флагом -replay дополнительно
// подаёт строки из CSV в датасет по одной, имитируя живой поток
// транзакций — видно как rolling агрегаты растут по мере ingestion.
//
// Использование:
//
//	./feature-monitor -dataset tx_data -key-field transactionID 41 42 43
//	./feature-monitor -dataset tx_data -key-field transactionID -replay new_tx.csv 41 42
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/featmill/pkg/config"
	"github.com/ilkoid/featmill/pkg/events"
	"github.com/ilkoid/featmill/pkg/featmill"
	"github.com/ilkoid/featmill/pkg/frame"
	"github.com/ilkoid/featmill/pkg/monitor"
	"github.com/ilkoid/featmill/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "путь к config.yaml")
	datasetID := flag.String("dataset", "tx_data", "идентификатор датасета")
	keyField := flag.String("key-field", "transactionID", "имя key-поля датасета")
	interval := flag.Duration("interval", 3*time.Second, "период опроса online store")
	replayPath := flag.String("replay", "", "CSV для имитации живого потока (опционально)")
	flag.Parse()

	keys := flag.Args()
	if len(keys) == 0 {
		fmt.Println("Usage: feature-monitor [flags] <key> [key...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// 1. Инициализируем логгер (TUI рисует в терминал, лог — в файл)
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Starting feature-monitor", "version", Version, "dataset", *datasetID)

	// 2. Грузим конфиг и создаём клиента
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	client, err := featmill.NewFromConfig(cfg.FeatMill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// 3. Если задан replay — поднимаем emitter и горутину подачи строк
	var sub events.Subscriber
	if *replayPath != "" {
		emitter := events.NewChanEmitter(16)
		sub = emitter.Subscribe()

		go replayRows(ctx, client, emitter, *datasetID, *replayPath, *interval)
	}

	// 4. Запускаем TUI
	model := monitor.New(client, monitor.Config{
		Title:     "FeatMill Monitor",
		DatasetID: *datasetID,
		KeyField:  *keyField,
		Keys:      keys,
		Interval:  *interval,
	}, sub)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}

	utils.Info("feature-monitor finished")
}

// replayRows подаёт строки CSV в датасет по одной с заданным интервалом.
//
// Имитация живого потока: платформа пересчитывает rolling фичи на каждую
// поданную строку, монитор видит изменения при следующем опросе.
func replayRows(ctx context.Context, client *featmill.Client, emitter *events.ChanEmitter, datasetID string, csvPath string, interval time.Duration) {
	defer emitter.Close()

	rows, err := frame.LoadCSV(csvPath)
	if err != nil {
		emitter.Emit(ctx, events.Event{
			Type:      events.EventError,
			Data:      events.ErrorData{Err: err},
			Timestamp: time.Now(),
		})
		return
	}

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		accepted, err := client.UploadRows(ctx, datasetID, []featmill.Row{row})
		if err != nil {
			emitter.Emit(ctx, events.Event{
				Type:      events.EventError,
				Data:      events.ErrorData{Err: err},
				Timestamp: time.Now(),
			})
			continue
		}

		emitter.Emit(ctx, events.Event{
			Type:      events.EventUpload,
			Data:      events.UploadData{DatasetID: datasetID, Accepted: accepted},
			Timestamp: time.Now(),
		})
	}

	emitter.Emit(ctx, events.Event{
		Type:      events.EventDone,
		Data:      events.DoneData{Message: fmt.Sprintf("replayed %d rows", len(rows))},
		Timestamp: time.Now(),
	})
}
