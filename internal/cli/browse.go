package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/render"
)

var (
	browseHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	browseBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
	browseLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	browseBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

func (c *CLI) browseCommand() *cobra.Command {
	var engine string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the family by generation in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts, err := c.pipelineOptions()
			if err != nil {
				return err
			}
			if engine != "" {
				opts.Engine = engine
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			snap, err := st.Snapshot(ctx)
			if err != nil {
				return err
			}
			l, err := runner.Layout(ctx, snap, opts)
			if err != nil {
				return err
			}
			if len(snap.People) == 0 {
				printInfo("No people yet")
				return nil
			}

			_, err = tea.NewProgram(newBrowseModel(snap, l, time.Now()), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "layout engine: dot, layered")
	return cmd
}

// browseRow is one person in the list.
type browseRow struct {
	person     family.Person
	generation int
}

// browseModel lists people by generation and shows the details of the
// selected one.
type browseModel struct {
	snap     family.Snapshot
	rows     []browseRow
	now      time.Time
	cursor   int
	offset   int
	height   int
	detailed bool
}

func newBrowseModel(snap family.Snapshot, l *layout.Layout, now time.Time) browseModel {
	return browseModel{snap: snap, rows: generations(snap, l), now: now, height: 15}
}

// generations numbers people by descent: people without recorded parents
// are generation 1, everyone else is one below their lowest parent.
// People who married in take their spouse's generation. Within a
// generation people follow their left-to-right position in the layout.
func generations(snap family.Snapshot, l *layout.Layout) []browseRow {
	gen := make(map[string]int, len(snap.People))
	visiting := make(map[string]bool)
	var depth func(id string) int
	depth = func(id string) int {
		if g, ok := gen[id]; ok {
			return g
		}
		if visiting[id] {
			return 1
		}
		visiting[id] = true
		g := 1
		for _, parent := range snap.Parents(id) {
			g = max(g, depth(parent)+1)
		}
		visiting[id] = false
		gen[id] = g
		return g
	}
	for _, p := range snap.People {
		depth(p.ID)
	}
	for _, p := range snap.People {
		if len(snap.Parents(p.ID)) > 0 {
			continue
		}
		for _, r := range snap.Spouses(p.ID) {
			other := r.Person1ID
			if other == p.ID {
				other = r.Person2ID
			}
			gen[p.ID] = max(gen[p.ID], gen[other])
		}
	}

	x := make(map[string]float64, len(l.Nodes))
	for _, n := range l.Nodes {
		x[n.ID] = n.Center().X
	}
	rows := make([]browseRow, len(snap.People))
	for i, p := range snap.People {
		rows[i] = browseRow{person: p, generation: gen[p.ID]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].generation != rows[j].generation {
			return rows[i].generation < rows[j].generation
		}
		return x[rows[i].person.ID] < x[rows[j].person.ID]
	})
	return rows
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if !m.detailed {
				return m, tea.Quit
			}
			m.detailed = false
		case "enter", " ":
			m.detailed = !m.detailed
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.offset = min(m.offset, m.cursor)
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.detailed && len(m.rows) > 0 {
		return m.detailView()
	}
	return m.listView()
}

func (m browseModel) listView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Family"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		card := render.CardFor(&r.person, m.now)
		rows = append(rows, []string{cursor, roman(r.generation), card.Name, card.Years, r.person.BirthPlace})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(browseBorderStyle).
		Headers("", "Gen", "Name", "Years", "Born in").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return browseHeaderStyle
			}
			idx := m.offset + row
			base := lipgloss.NewStyle()
			if col == 1 || col == 3 || col == 4 {
				base = base.Foreground(colorGray)
			}
			if idx == m.cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if idx < len(m.rows) && m.rows[idx].person.Deceased() {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	return b.String()
}

func (m browseModel) detailView() string {
	p := m.rows[m.cursor].person
	card := render.CardFor(&p, m.now)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(card.Name))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("esc back  q quit"))
	b.WriteString("\n\n")

	var lines []string
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, browseLabelStyle.Render(label)+StyleValue.Render(value))
		}
	}
	field("Years", card.Years)
	field("Age", card.Age)
	field("Born", p.BirthDate)
	field("Died", p.DeathDate)
	field("Born in", p.BirthPlace)
	field("Photo", p.PhotoURL)
	field("Parents", m.names(m.snap.Parents(p.ID)))
	var spouses []string
	for _, r := range m.snap.Spouses(p.ID) {
		other := r.Person1ID
		if other == p.ID {
			other = r.Person2ID
		}
		spouses = append(spouses, other)
	}
	field("Spouses", m.names(spouses))
	field("Children", m.names(m.snap.Children(p.ID)))
	field("ID", p.ID)

	b.WriteString(browseBoxStyle.Render(strings.Join(lines, "\n")))
	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(60).Render(p.Description))
	}
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) names(ids []string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.snap.Person(id); ok {
			out = append(out, p.FullName())
		} else {
			out = append(out, id)
		}
	}
	return strings.Join(out, ", ")
}

// roman renders small generation numbers as Roman numerals.
func roman(n int) string {
	if n <= 0 || n >= 40 {
		return fmt.Sprint(n)
	}
	var b strings.Builder
	for _, d := range []struct {
		v int
		s string
	}{{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"}} {
		for n >= d.v {
			b.WriteString(d.s)
			n -= d.v
		}
	}
	return b.String()
}
