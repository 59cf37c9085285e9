package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/atomicstack/susum/internal/format/table"
	"github.com/atomicstack/susum/internal/instance"
	uistate "github.com/atomicstack/susum/internal/ui/state"
)

const (
	defaultViewWidth = 80
	minViewWidth     = 24

	searchTitle  = "Search for"
	listTitle    = "Matching Instances"
	runningLabel = "Running..."
	emptyLabel   = "No matching instances"

	selectedIndicator = "› "
	itemIndicator     = "  "
	ellipsis          = "…"

	// searchChrome is the search box: two border rows, title and query.
	searchChrome = 4
	// listChrome is the list box border rows plus its title.
	listChrome = 3
	statusRows = 1
	footerRows = 1
)

// View implements tea.Model. It only reads state; the viewport is kept in
// step with the selection by Update.
func (m *Model) View() string {
	width := m.viewWidth()
	sections := []string{
		m.viewSearch(width),
		m.viewList(width),
		m.viewStatus(width),
	}
	if m.showFooter {
		sections = append(sections, m.viewFooter(width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewWidth() int {
	if m.width <= 0 {
		return defaultViewWidth
	}
	if m.width < minViewWidth {
		return minViewWidth
	}
	return m.width
}

// boxContentWidth is the usable width inside a bordered, padded box.
func boxContentWidth(width int) int {
	return width - 4
}

func (m *Model) box(width int, lines []string) string {
	return m.styles.Box.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) viewSearch(width int) string {
	inner := boxContentWidth(width)
	query := truncateLeft(m.session.Query(), inner-1)
	lines := []string{
		m.styles.Title.Render(searchTitle),
		m.styles.Query.Render(query) + m.cursor.View(),
	}
	return m.box(width, lines)
}

func (m *Model) viewList(width int) string {
	inner := boxContentWidth(width)
	var lines []string
	switch status := m.session.Status().(type) {
	case uistate.Pending:
		lines = []string{m.spinner.View() + " " + m.styles.Loading.Render(runningLabel)}
	case uistate.Failed:
		lines = []string{m.styles.Error.Render(ansi.Wrap(status.Reason, inner, ""))}
	case uistate.Loaded:
		lines = append(lines, m.styles.Title.Render(listTitle))
		lines = append(lines, m.listRows(inner)...)
	}
	return m.box(width, lines)
}

func (m *Model) listRows(width int) []string {
	records := m.session.Filtered()
	if len(records) == 0 {
		return []string{m.styles.Info.Render(emptyLabel)}
	}
	start, end := m.viewport.Window(len(records), m.maxVisibleRows())
	visible := records[start:end]
	rows := table.Format(rowCells(visible), nil)
	highlights := matchPositions(m.session.Query(), rows)
	selected, _ := m.session.Selected()
	out := make([]string, 0, len(rows))
	for i, row := range rows {
		out = append(out, m.renderRow(row, highlights[i], start+i == selected, width))
	}
	return out
}

// rowCells splits each record into id, name and remaining tags columns.
func rowCells(records []instance.Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		var rest []string
		for _, tag := range r.Tags() {
			if tag.Key == instance.NameKey {
				continue
			}
			rest = append(rest, tag.Key+"="+tag.Value)
		}
		rows[i] = []string{r.ID(), r.Name(), strings.Join(rest, " ")}
	}
	return rows
}

// matchPositions returns, per row, the byte offsets sahilm/fuzzy matched
// against the query.
func matchPositions(query string, rows []string) []map[int]bool {
	out := make([]map[int]bool, len(rows))
	query = strings.TrimSpace(query)
	if query == "" {
		return out
	}
	for _, match := range fuzzy.Find(query, rows) {
		set := make(map[int]bool, len(match.MatchedIndexes))
		for _, idx := range match.MatchedIndexes {
			set[idx] = true
		}
		out[match.Index] = set
	}
	return out
}

func (m *Model) renderRow(text string, matched map[int]bool, selected bool, width int) string {
	indicator, indicatorStyle := itemIndicator, m.styles.ItemIndicator
	base, hl := m.styles.Item, m.styles.Match
	if selected {
		indicator, indicatorStyle = selectedIndicator, m.styles.SelectedItemIndicator
		base, hl = m.styles.SelectedItem, m.styles.SelectedMatch
	}
	avail := width - ansi.StringWidth(indicator)
	if avail < 1 {
		avail = 1
	}
	suffix := ""
	if ansi.StringWidth(text) > avail {
		text = ansi.Truncate(text, avail-1, "")
		suffix = ellipsis
	}

	var b strings.Builder
	b.WriteString(indicatorStyle.Render(indicator))
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style := base
		if runMatched {
			style = hl
		}
		b.WriteString(style.Render(run.String()))
		run.Reset()
	}
	for i, r := range text {
		if matched[i] != runMatched {
			flush()
			runMatched = matched[i]
		}
		run.WriteRune(r)
	}
	flush()

	tail := suffix
	if selected {
		if pad := avail - ansi.StringWidth(text) - ansi.StringWidth(suffix); pad > 0 {
			tail += strings.Repeat(" ", pad)
		}
	}
	if tail != "" {
		b.WriteString(base.Render(tail))
	}
	return b.String()
}

func (m *Model) viewStatus(width int) string {
	profile := fmt.Sprintf("AWS Profile: %s", m.session.Profile())
	if port, ok := m.session.Port(); ok {
		line := fmt.Sprintf("%s | Will use port [%d]", profile, port)
		return m.styles.Status.Render(truncateText(line, width))
	}
	return m.styles.Status.Render(profile+" | ") + m.styles.StatusWarning.Render("No free port")
}

func (m *Model) viewFooter(width int) string {
	h := m.help
	h.Width = width
	return h.View(m.keys)
}

// maxVisibleRows is the number of list rows that fit, or 0 when the
// terminal height is unknown.
func (m *Model) maxVisibleRows() int {
	if m.height <= 0 {
		return 0
	}
	rows := m.height - searchChrome - listChrome - statusRows
	if m.showFooter {
		rows -= footerRows
	}
	if rows < 1 {
		return 1
	}
	return rows
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(text, width, ellipsis)
}

// truncateLeft keeps the end of text so the caret stays visible while typing
// a long query.
func truncateLeft(text string, width int) string {
	if width <= 0 {
		return ""
	}
	over := ansi.StringWidth(text) - width
	if over <= 0 {
		return text
	}
	return ellipsis + ansi.TruncateLeft(text, over+1, "")
}
