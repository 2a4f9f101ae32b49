// Пакет tui — терминальный интерфейс страниц консоли поверх datatable.Table.
// Model — интерактивный режим (bubbletea), Plain — статический вывод
// для не-TTY и --plain.
package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/pages"
)

// Ширина колонки в символах: Width колонки задан в пикселях.
const (
	defaultColumnChars = 14
	minColumnChars     = 6
	maxColumnChars     = 32
	pixelsPerChar      = 10
)

// styles — набор стилей отрисовки. Пустой набор даёт чистый текст.
type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	focused    lipgloss.Style
	selected   lipgloss.Style
	muted      lipgloss.Style
	current    lipgloss.Style
	errorLine  lipgloss.Style
	toastLine  lipgloss.Style
	box        lipgloss.Style
	sortMarker lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:     lipgloss.NewStyle().Bold(true),
		focused:    lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("39")),
		selected:   lipgloss.NewStyle().Reverse(true),
		muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		current:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		errorLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		toastLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		box:        lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		sortMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{s, s, s, s, s, s, s, s, s, s}
}

// columnChars переводит ширину колонки в символы.
func columnChars(c datatable.Column) int {
	if c.Width <= 0 {
		return defaultColumnChars
	}
	return min(maxColumnChars, max(minColumnChars, c.Width/pixelsPerChar))
}

// fit обрезает или дополняет s до width с учётом выравнивания.
func fit(s string, width int, align datatable.Align) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = runewidth.Truncate(s, width, "…")
	switch align {
	case datatable.AlignRight:
		return runewidth.FillLeft(s, width)
	case datatable.AlignCenter:
		pad := width - runewidth.StringWidth(s)
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return runewidth.FillRight(s, width)
	}
}

// sortMark — маркер направления сортировки колонки.
func sortMark(col datatable.Column, sorter *datatable.Sorter) string {
	if sorter == nil || sorter.Field != col.SortField() {
		if col.Sortable {
			return " ⇅"
		}
		return ""
	}
	if sorter.Order == datatable.OrderAsc {
		return " ↑"
	}
	return " ↓"
}

// treePrefix — отступ и маркер раскрытия для первой колонки дерева.
func treePrefix(r datatable.DisplayRow) string {
	marker := "  "
	if r.HasChildren {
		marker = "▸ "
		if r.Expanded {
			marker = "▾ "
		}
	}
	return strings.Repeat("  ", r.Level) + marker
}

// renderTable отрисовывает заголовок и строки снимка.
// focusCol и cursor < 0 — без выделения.
func renderTable(cols []datatable.Column, snap datatable.Snapshot, tree bool, focusCol, cursor int, st styles) string {
	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		cell := fit(c.Title+sortMark(c, snap.Sorter), columnChars(c), datatable.AlignLeft)
		if i == focusCol {
			header[i] = st.focused.Render(cell)
		} else {
			header[i] = st.header.Render(cell)
		}
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteByte('\n')

	if snap.Empty() {
		b.WriteString(st.muted.Render("暂无数据"))
		b.WriteByte('\n')
		return b.String()
	}

	for i, r := range snap.Rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			text := c.Cell(r.Row, i)
			if tree && j == 0 {
				text = treePrefix(r) + text
			}
			cells[j] = fit(text, columnChars(c), c.Align)
		}
		line := strings.Join(cells, " ")
		if i == cursor {
			line = st.selected.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// renderPagination — строка пагинации: итог, номера страниц, размер.
func renderPagination(p datatable.Pagination, st styles) string {
	parts := make([]string, 0, 8)
	if p.ShowTotal && p.Total >= p.MinShowTotal {
		if s := p.Summary(); s != "" {
			parts = append(parts, s)
		}
	}

	items := p.Items()
	nums := make([]string, len(items))
	for i, it := range items {
		if !it.Ellipsis && it.Page == p.Current {
			nums[i] = st.current.Render("[" + it.String() + "]")
		} else {
			nums[i] = it.String()
		}
	}
	parts = append(parts, strings.Join(nums, " "))

	if p.ShowSizeChanger {
		parts = append(parts, strconv.Itoa(p.PageSize)+" 条/页")
	}
	return strings.Join(parts, "  ")
}

// renderSearch — активные условия поиска.
func renderSearch(values datatable.SearchValues, cols []datatable.Column, st styles) string {
	if len(values) == 0 {
		return ""
	}
	var parts []string
	for _, c := range cols {
		if v, ok := values[c.Key]; ok {
			parts = append(parts, c.Title+": "+datatable.FormatValue(v))
		}
	}
	return st.muted.Render("搜索 " + strings.Join(parts, ", "))
}

// Plain загружает первую страницу и печатает её без интерактива.
func Plain(ctx context.Context, w io.Writer, page pages.Page, table *datatable.Table) error {
	if err := table.Mount(ctx); err != nil {
		return err
	}
	st := plainStyles()
	snap := table.Snapshot()

	if _, err := fmt.Fprintln(w, page.Title); err != nil {
		return err
	}
	if _, err := io.WriteString(w, renderTable(table.Columns(), snap, page.Tree, -1, -1, st)); err != nil {
		return err
	}
	if snap.ShowPagination {
		if _, err := fmt.Fprintln(w, renderPagination(snap.Pagination, st)); err != nil {
			return err
		}
	}
	return nil
}
