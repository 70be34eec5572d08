// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события feature-пайплайна.
// Позволяет подключать любые UI (TUI, Web, CLI) без изменения библиотечной логики.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI (TUI, CLI, etc).
//
// # Basic Usage
//
//	// В пайплайне:
//	emitter := events.NewChanEmitter(16)
//	emitter.Emit(ctx, events.Event{Type: events.EventUpload, Data: events.UploadData{...}})
//
//	// В UI:
//	sub := emitter.Subscribe()
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventRetrieve:
//	        ui.showRows(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события пайплайна.
type EventType string

const (
	// EventUpload отправляется после загрузки порции строк в датасет.
	EventUpload EventType = "upload"

	// EventMaterialize отправляется когда материализация фичей запущена.
	EventMaterialize EventType = "materialize"

	// EventRetrieve отправляется после чтения значений фичей из online store.
	EventRetrieve EventType = "retrieve"

	// EventError отправляется при ошибке.
	EventError EventType = "error"

	// EventDone отправляется когда пайплайн завершил работу.
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// UploadData содержит данные для EventUpload.
type UploadData struct {
	DatasetID string
	Accepted  int // Сколько строк приняла платформа
}

func (UploadData) eventData() {}

// MaterializeData содержит данные для EventMaterialize.
type MaterializeData struct {
	DatasetID string
	Features  []string
}

func (MaterializeData) eventData() {}

// RetrieveData содержит результат чтения фичей.
type RetrieveData struct {
	DatasetID string
	Rows      []map[string]any // Строки, дополненные значениями фичей
	Duration  time.Duration
}

func (RetrieveData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// DoneData содержит данные для EventDone.
type DoneData struct {
	Message string
}

func (DoneData) eventData() {}

// Event представляет событие пайплайна.
//
// Data содержит типизированные данные события (EventData).
// Для каждого EventType существует соответствующий тип данных:
//   - EventUpload: UploadData
//   - EventMaterialize: MaterializeData
//   - EventRetrieve: RetrieveData
//   - EventError: ErrorData
//   - EventDone: DoneData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// Emitter — Port для отправки событий пайплайна.
type Emitter interface {
	// Emit отправляет событие. Уважает context.Context.
	Emit(ctx context.Context, event Event)

	// Subscribe возвращает подписчика на события.
	Subscribe() Subscriber

	// Close закрывает emitter и освобождает ресурсы.
	Close()
}

// Subscriber — Port для чтения событий пайплайна.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	Events() <-chan Event

	// Close закрывает подписчика.
	Close()
}
