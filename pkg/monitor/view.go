// Рендеринг монитора - статус-бар, таблица фичей, лог пайплайна.

package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)

// View отрисовывает монитор.
func (m Model) View() string {
	var b strings.Builder

	// 1. Статус-бар
	status := fmt.Sprintf("%s | dataset: %s | keys: %d", m.cfg.Title, m.cfg.DatasetID, len(m.cfg.Keys))
	if !m.lastSync.IsZero() {
		status += " | synced " + m.lastSync.Format("15:04:05")
	}
	if m.fetching {
		status += " " + m.spinner.View()
	}
	b.WriteString(titleStyle.Render(status))
	b.WriteString("\n\n")

	// 2. Ошибка последнего retrieve (если была)
	if m.err != nil {
		b.WriteString(errStyle.Render("retrieve error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	// 3. Таблица значений фичей
	b.WriteString(m.renderRows())

	// 4. Лог пайплайна
	if len(m.log) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Pipeline"))
		b.WriteString("\n")

		width := m.width
		if width <= 0 {
			width = 80
		}
		for _, line := range m.log {
			b.WriteString(dimStyle.Render(wordwrap.String(line, width-2)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r: refresh • q: quit"))
	b.WriteString("\n")

	return b.String()
}

// renderRows отрисовывает строки с фичами.
//
// Колонки: key-поле + либо явный список фичей из Config, либо все поля
// строки в алфавитном порядке.
func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("waiting for first retrieve...") + "\n"
	}

	var b strings.Builder

	for _, row := range m.rows {
		keyVal := fmt.Sprintf("%v", row[m.cfg.KeyField])
		b.WriteString(keyStyle.Render(m.cfg.KeyField + "=" + keyVal))
		b.WriteString("\n")

		names := m.cfg.Features
		if len(names) == 0 {
			// Все поля кроме ключа, детерминированный порядок
			for name := range row {
				if name != m.cfg.KeyField {
					names = append(names, name)
				}
			}
			sort.Strings(names)
		}

		for _, name := range names {
			val, ok := row[name]
			if !ok {
				b.WriteString(fmt.Sprintf("  %-24s %s\n", name, dimStyle.Render("—")))
				continue
			}
			b.WriteString(fmt.Sprintf("  %-24s %v\n", name, val))
		}
		b.WriteString("\n")
	}

	return b.String()
}
