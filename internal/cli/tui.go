package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/render/text"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// FrameListModel - Interactive frame browser
// =============================================================================

// FrameListModel is the bubbletea model for browsing the frames of a layout.
// The selected frame is drawn below the list with the text renderer.
type FrameListModel struct {
	Frames []graph.Frame
	Cursor int
	Height int
	Offset int
	Color  bool

	// Expanded hides the list and shows only the selected frame.
	Expanded bool
}

// NewFrameListModel creates a new frame list model.
func NewFrameListModel(l graph.Layout, color bool) FrameListModel {
	return FrameListModel{
		Frames: l.Frames,
		Height: 8,
		Color:  color,
	}
}

func (m FrameListModel) Init() tea.Cmd {
	return nil
}

func (m FrameListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Frames)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height / 3
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m FrameListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Frames"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	if len(m.Frames) == 0 {
		b.WriteString(listDimStyle.Render("  layout has no frames"))
		return b.String()
	}

	if !m.Expanded {
		b.WriteString(m.table())
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Frames))))
		b.WriteString("\n\n")
	}

	f := m.Frames[m.Cursor]
	b.WriteString(StyleHighlight.Render(f.Cell))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %dx%d tiles · %s", f.Kind, f.Width, f.Height, f.Report.History)))
	b.WriteString("\n")
	if f.Report.Error != "" {
		b.WriteString(styleFailed.Render(f.Report.Error))
		b.WriteString("\n")
	}
	b.WriteString(text.Render(f, text.Options{Color: m.Color}))

	return b.String()
}

func (m FrameListModel) table() string {
	end := m.Offset + m.Height
	if end > len(m.Frames) {
		end = len(m.Frames)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Frames[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			f.Cell,
			fmt.Sprintf("%dx%d", f.Rows, f.Cols),
			StyleNumber.Render(fmt.Sprint(len(f.Routes))),
			fmt.Sprint(f.Report.Escalations),
			f.Report.State,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cell", "Matrix", "Nets", "Esc", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Frames) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			if col == 5 {
				return base.Inherit(stateStyle(m.Frames[idx].Report))
			}
			return base
		}).
		Render()
}
