package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mgoin/vllm-wheels/pkg/snapshot"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	input := filepath.Join("data", "wheels.json")

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore a snapshot interactively in the terminal",
		Long: `Explore a snapshot's wheels in an interactive list. Type to filter,
use arrow keys to move, and press enter to print the selected wheel's URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Read(input)
			if err != nil {
				return err
			}

			model := newBrowseModel(snap)
			if len(model.rows) == 0 {
				printWarning("Snapshot has no wheels to browse")
				return nil
			}

			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}

			if m, ok := final.(browseModel); ok && m.selected != nil {
				printKeyValue("Filename", m.selected.filename)
				printKeyValue("Source", m.selected.source)
				printKeyValue("URL", m.selected.url)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", input, "snapshot JSON path")
	return cmd
}

// browseRow is one selectable wheel entry.
type browseRow struct {
	filename string
	source   string
	version  string
	python   string
	platform string
	url      string
}

func (r browseRow) matches(filter string) bool {
	if filter == "" {
		return true
	}
	haystack := strings.ToLower(r.filename + " " + r.source + " " + r.version + " " + r.python + " " + r.platform)
	return strings.Contains(haystack, strings.ToLower(filter))
}

// browseModel is the bubbletea model for the wheel list.
type browseModel struct {
	rows     []browseRow
	visible  []int
	cursor   int
	offset   int
	height   int
	filter   string
	selected *browseRow
}

func newBrowseModel(snap *snapshot.Snapshot) browseModel {
	keys := make([]string, 0, len(snap.Results))
	for k := range snap.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows []browseRow
	for _, key := range keys {
		for _, a := range snap.Results[key] {
			if !a.IsWheel() {
				continue
			}
			rows = append(rows, browseRow{
				filename: a.Filename,
				source:   describeKey(key),
				version:  a.Version,
				python:   a.PythonTag,
				platform: a.PlatformTag,
				url:      a.URL,
			})
		}
	}

	m := browseModel{rows: rows, height: 15}
	m.refilter()
	return m
}

func (m *browseModel) refilter() {
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if r.matches(m.filter) {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.offset = 0
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.filter != "" {
				m.filter = ""
				m.refilter()
				return m, nil
			}
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.visible) > 0 {
				row := m.rows[m.visible[m.cursor]]
				m.selected = &row
			}
			return m, tea.Quit
		case "backspace":
			if m.filter != "" {
				m.filter = m.filter[:len(m.filter)-1]
				m.refilter()
			}
		default:
			if msg.Type == tea.KeyRunes {
				m.filter += string(msg.Runes)
				m.refilter()
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("vLLM wheels"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d/%d", len(m.visible), len(m.rows))))
	b.WriteString("\n")
	if m.filter != "" {
		b.WriteString(listDimStyle.Render("filter: ") + m.filter)
	} else {
		b.WriteString(listDimStyle.Render("type to filter"))
	}
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		row := m.rows[m.visible[i]]
		line := fmt.Sprintf("%-60s %s", row.filename, row.source)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move · enter select · esc quit"))
	return b.String()
}
