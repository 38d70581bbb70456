package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aarforge/aarforge/pkg/export"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RuleListModel - Interactive rule graph browser
// =============================================================================

// RuleListModel is the bubbletea model for browsing the expanded rule graph.
type RuleListModel struct {
	Nodes    []export.Node
	DepCount map[string]int // outgoing edges per rule
	Cursor   int
	Height   int
	Offset   int
}

// NewRuleListModel creates a rule browser over the graph's nodes.
func NewRuleListModel(g export.Graph) RuleListModel {
	depCount := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		depCount[e.From]++
	}
	return RuleListModel{
		Nodes:    g.Nodes,
		DepCount: depCount,
		Height:   15,
	}
}

func (m RuleListModel) Init() tea.Cmd {
	return nil
}

func (m RuleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g":
			m.Cursor = 0
			m.Offset = 0
		case "G":
			m.Cursor = len(m.Nodes) - 1
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RuleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Rule Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		origin := "declared"
		if n.Generated {
			origin = "generated"
		}

		deps := "—"
		if c := m.DepCount[n.ID]; c > 0 {
			deps = fmt.Sprintf("%d", c)
		}

		output := n.Output
		if output == "" {
			output = "—"
		}

		rows = append(rows, []string{cursor, n.ID, n.Kind, origin, deps, output})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Target", "Kind", "Origin", "Deps", "Output").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if n.Generated {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Foreground(colorGreen).Bold(true)
			}
			if n.Generated {
				return base.Foreground(colorGray)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}
