// Package monitor предоставляет TUI для наблюдения за значениями фичей.
//
// Монитор периодически читает online store через RetrieveFeatures для
// фиксированного набора ключей и показывает текущие значения фичей —
// аналог повторного запуска ячейки туториала, только живьём.
//
// Дополнительно слушает events.Subscriber: события пайплайна (загрузка
// строк, материализация) показываются в логе под таблицей.
//
// Не содержит бизнес-логики платформы, только UI.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/featmill/pkg/events"
	"github.com/ilkoid/featmill/pkg/featmill"
)

// Config конфигурирует монитор.
//
// Все поля кроме DatasetID/KeyField/Keys опциональны.
type Config struct {
	// Title — заголовок (отображается в статус-баре)
	Title string

	// DatasetID — датасет, чей online store читаем
	DatasetID string

	// KeyField — имя key-поля датасета
	KeyField string

	// Keys — значения ключа для отслеживания
	Keys []string

	// Features — имена фичей для отображения (пусто = все поля строки)
	Features []string

	// Interval — период опроса online store
	Interval time.Duration

	// MaxLog — максимум строк в логе событий (0 = дефолт 50)
	MaxLog int
}

// tickMsg — пора сделать следующий retrieve.
type tickMsg time.Time

// rowsMsg — результат очередного retrieve.
type rowsMsg struct {
	rows     []featmill.Row
	duration time.Duration
}

// fetchErrMsg — retrieve упал.
type fetchErrMsg struct{ err error }

// eventMsg — событие пайплайна из подписки.
type eventMsg events.Event

// subClosedMsg — канал событий закрыт.
type subClosedMsg struct{}

// Model — bubbletea модель монитора.
type Model struct {
	cfg    Config
	client *featmill.Client
	sub    events.Subscriber // Может быть nil — тогда лог пайплайна пуст

	spinner  spinner.Model
	rows     []featmill.Row
	log      []string
	err      error
	fetching bool
	lastSync time.Time

	width  int
	height int
}

// New создаёт модель монитора.
//
// sub может быть nil если событий пайплайна нет (чистый режим наблюдения).
func New(client *featmill.Client, cfg Config, sub events.Subscriber) Model {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.MaxLog <= 0 {
		cfg.MaxLog = 50
	}
	if cfg.Title == "" {
		cfg.Title = "FeatMill Monitor"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		cfg:     cfg,
		client:  client,
		sub:     sub,
		spinner: sp,
	}
}

// Init запускает spinner, первый retrieve и подписку на события.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchCmd()}
	if m.sub != nil {
		cmds = append(cmds, m.waitEventCmd())
	}
	return tea.Batch(cmds...)
}

// fetchCmd читает значения фичей для отслеживаемых ключей.
func (m Model) fetchCmd() tea.Cmd {
	client := m.client
	cfg := m.cfg

	return func() tea.Msg {
		// Входные строки: по одной на отслеживаемый ключ
		input := make([]featmill.Row, len(cfg.Keys))
		for i, key := range cfg.Keys {
			input[i] = featmill.Row{cfg.KeyField: key}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval*2)
		defer cancel()

		start := time.Now()
		rows, err := client.RetrieveFeatures(ctx, cfg.DatasetID, input)
		if err != nil {
			return fetchErrMsg{err: err}
		}

		return rowsMsg{rows: rows, duration: time.Since(start)}
	}
}

// waitEventCmd ждёт следующее событие пайплайна.
func (m Model) waitEventCmd() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		if !ok {
			return subClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// tickCmd планирует следующий опрос.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update обрабатывает сообщения bubbletea.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			// Ручное обновление
			if !m.fetching {
				m.fetching = true
				return m, m.fetchCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if !m.fetching {
			m.fetching = true
			return m, m.fetchCmd()
		}
		return m, m.tickCmd()

	case rowsMsg:
		m.fetching = false
		m.rows = msg.rows
		m.err = nil
		m.lastSync = time.Now()
		return m, m.tickCmd()

	case fetchErrMsg:
		m.fetching = false
		m.err = msg.err
		return m, m.tickCmd()

	case eventMsg:
		m.appendLog(formatEvent(events.Event(msg)))
		return m, m.waitEventCmd()

	case subClosedMsg:
		m.appendLog("pipeline finished")
		m.sub = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// appendLog добавляет строку в лог с обрезкой по MaxLog.
func (m *Model) appendLog(line string) {
	stamp := time.Now().Format("15:04:05")
	m.log = append(m.log, fmt.Sprintf("[%s] %s", stamp, line))
	if len(m.log) > m.cfg.MaxLog {
		m.log = m.log[len(m.log)-m.cfg.MaxLog:]
	}
}

// formatEvent превращает событие пайплайна в строку лога.
func formatEvent(ev events.Event) string {
	switch data := ev.Data.(type) {
	case events.UploadData:
		return fmt.Sprintf("upload: %d rows accepted into %s", data.Accepted, data.DatasetID)
	case events.MaterializeData:
		return fmt.Sprintf("materialize: %v on %s", data.Features, data.DatasetID)
	case events.RetrieveData:
		return fmt.Sprintf("retrieve: %d rows from %s in %s", len(data.Rows), data.DatasetID, data.Duration)
	case events.ErrorData:
		return fmt.Sprintf("error: %v", data.Err)
	case events.DoneData:
		return fmt.Sprintf("done: %s", data.Message)
	default:
		return string(ev.Type)
	}
}
