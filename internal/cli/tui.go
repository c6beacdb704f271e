package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flamesplit/pkg/tile"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// LevelPickerModel - Interactive grid selection
// =============================================================================

// LevelPickerModel is the bubbletea model for choosing a split level.
type LevelPickerModel struct {
	Levels   []tile.SplitConfig
	Cursor   int
	Selected *tile.SplitConfig

	// Name is the scene being split, shown in the title.
	Name string
}

// NewLevelPickerModel creates a picker over levels with the cursor on the
// first entry.
func NewLevelPickerModel(name string, levels []tile.SplitConfig) LevelPickerModel {
	return LevelPickerModel{Levels: levels, Name: name}
}

func (m LevelPickerModel) Init() tea.Cmd {
	return nil
}

func (m LevelPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Levels)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Levels) == 0 {
			return m, tea.Quit
		}
		sel := m.Levels[m.Cursor]
		m.Selected = &sel
		return m, tea.Quit
	default:
		// Digits jump straight to a level.
		if n, err := strconv.Atoi(key.String()); err == nil {
			for i, l := range m.Levels {
				if l.Level == n {
					m.Cursor = i
				}
			}
		}
	}
	return m, nil
}

func (m LevelPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Grid"))
	if m.Name != "" {
		b.WriteString(" " + StyleDim.Render(m.Name))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  1-9 jump  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Levels))
	for i, l := range m.Levels {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, strconv.Itoa(l.Level), l.Label(), strconv.Itoa(l.TileCount())}
	}

	b.WriteString(levelTable(rows, func(row int) bool { return row == m.Cursor }).Render())
	b.WriteString("\n")
	return b.String()
}

// levelTable renders level rows; current marks the highlighted row.
func levelTable(rows [][]string, current func(row int) bool) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Level", "Grid", "Tiles").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case current != nil && current(row):
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
