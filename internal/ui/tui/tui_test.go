package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/pages"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// listPage — страница над n записями с серверной пагинацией и поиском по name.
func listPage(n int, calls *[]datatable.LoadParams) pages.Page {
	all := make([]datatable.Row, n)
	for i := range all {
		all[i] = datatable.Row{"id": fmt.Sprintf("u%02d", i+1), "name": fmt.Sprintf("user-%02d", i+1)}
	}
	return pages.Page{
		Path:  "/users",
		Title: "用户管理",
		Columns: []datatable.Column{
			{Key: "name", Title: "用户名", DataIndex: "name", Width: 120, Sortable: true, Searchable: true},
			{Key: "id", Title: "ID", DataIndex: "id", Width: 80},
		},
		Load: func(_ context.Context, p datatable.LoadParams) (datatable.LoadResult, error) {
			*calls = append(*calls, p)
			rows := all
			if q, ok := p.SearchValues["name"].(string); ok {
				rows = nil
				for _, r := range all {
					if strings.Contains(r["name"].(string), q) {
						rows = append(rows, r)
					}
				}
			}
			start := (p.Pagination.Current - 1) * p.Pagination.PageSize
			end := min(len(rows), start+p.Pagination.PageSize)
			if start > end {
				start = end
			}
			return datatable.LoadResult{Data: rows[start:end], Total: len(rows)}, nil
		},
	}
}

// step применяет сообщение и синхронно выполняет возвращённую команду
// операции таблицы.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if loaded, ok := out.(loadedMsg); ok {
				next, _ = m.Update(loaded)
				m = next.(Model)
			}
		}
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, page pages.Page) Model {
	t.Helper()
	table := datatable.New(page.TableConfig(10))
	m := New(context.Background(), page, table, nil)
	if err := table.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return m
}

func TestModel_PageNavigation(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(25, &calls))

	m = step(t, m, keyRunes("n"))
	if got := m.table.Snapshot().Pagination.Current; got != 2 {
		t.Fatalf("страница = %d, ожидалась 2", got)
	}
	m = step(t, m, keyRunes("n"))
	m = step(t, m, keyRunes("n"))
	if got := m.table.Snapshot().Pagination.Current; got != 3 {
		t.Errorf("за последней страницей: %d, ожидалась 3", got)
	}
	if len(calls) != 3 {
		t.Errorf("загрузок = %d, ожидалось 3 (переход за край не грузит)", len(calls))
	}

	m = step(t, m, keyRunes("p"))
	if got := m.table.Snapshot().Pagination.Current; got != 2 {
		t.Errorf("после p: %d, ожидалась 2", got)
	}
}

func TestModel_PageSize(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(25, &calls))
	m = step(t, m, keyRunes("n"))
	m = step(t, m, keyRunes("n"))

	m = step(t, m, keyRunes("+"))
	p := m.table.Snapshot().Pagination
	if p.PageSize != 20 || p.Current != 2 {
		t.Errorf("pagination = %d/%d, ожидалось 20/2", p.PageSize, p.Current)
	}

	m = step(t, m, keyRunes("-"))
	m = step(t, m, keyRunes("-"))
	if got := m.table.Snapshot().Pagination.PageSize; got != 10 {
		t.Errorf("размер = %d, ожидался 10 (минимальный)", got)
	}
}

func TestModel_SortFocusedColumn(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(5, &calls))

	m = step(t, m, keyRunes("s"))
	last := calls[len(calls)-1]
	if last.Sorter == nil || last.Sorter.Field != "name" || last.Sorter.Order != datatable.OrderAsc {
		t.Fatalf("sorter = %+v", last.Sorter)
	}

	// Колонка id не сортируется
	m = step(t, m, keyRunes("l"))
	n := len(calls)
	step(t, m, keyRunes("s"))
	if len(calls) != n {
		t.Error("сортировка по несортируемой колонке вызвала загрузку")
	}
}

func TestModel_SearchPrompt(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(25, &calls))
	m = step(t, m, keyRunes("n"))

	m = step(t, m, keyRunes("/"))
	if m.prompt != promptSearch || m.searchKey != "name" {
		t.Fatalf("prompt = %v, key = %q", m.prompt, m.searchKey)
	}
	m = step(t, m, keyRunes("-2"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := m.table.Snapshot()
	if snap.Pagination.Current != 1 || snap.Pagination.Total != 6 {
		t.Errorf("после поиска: страница %d, total %d", snap.Pagination.Current, snap.Pagination.Total)
	}
	if !strings.Contains(m.View(), "用户名: -2") {
		t.Errorf("нет строки поиска в View:\n%s", m.View())
	}

	m = step(t, m, keyRunes("x"))
	if got := m.table.Snapshot().Pagination.Total; got != 25 {
		t.Errorf("после сброса total = %d, ожидалось 25", got)
	}
}

func TestModel_JumpPrompt(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(25, &calls))

	m = step(t, m, keyRunes("g"))
	m = step(t, m, keyRunes("3"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.table.Snapshot().Pagination.Current; got != 3 {
		t.Errorf("страница = %d, ожидалась 3", got)
	}

	m = step(t, m, keyRunes("g"))
	m = step(t, m, keyRunes("9"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt != promptNone || m.table.Snapshot().Pagination.Current != 3 {
		t.Error("Esc должен закрыть ввод без перехода")
	}
}

func TestModel_TreeToggle(t *testing.T) {
	page := pages.Page{
		Title: "权限管理",
		Tree:  true,
		Columns: []datatable.Column{
			{Key: "name", Title: "权限名称", DataIndex: "name"},
		},
	}
	table := datatable.New(datatable.Config{Columns: page.Columns, RowKey: "id", Tree: true, ParentKey: "parentId"})
	table.SetRows([]datatable.Row{
		{"id": "1", "name": "系统管理"},
		{"id": "2", "name": "用户管理", "parentId": "1"},
		{"id": "3", "name": "角色管理", "parentId": "1"},
	})
	m := New(context.Background(), page, table, nil)

	if n := len(table.Snapshot().Rows); n != 1 {
		t.Fatalf("свёрнутое дерево: %d строк", n)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if n := len(table.Snapshot().Rows); n != 3 {
		t.Fatalf("после раскрытия: %d строк", n)
	}
	if !strings.Contains(m.View(), "▾ 系统管理") {
		t.Errorf("нет маркера раскрытия:\n%s", m.View())
	}

	m = step(t, m, keyRunes("j"))
	m = step(t, m, keyRunes("j"))
	m = step(t, m, keyRunes("c"))
	if m.cursor != 0 {
		t.Errorf("курсор = %d после сворачивания", m.cursor)
	}
	step(t, m, keyRunes("e"))
	if n := len(table.Snapshot().Rows); n != 3 {
		t.Errorf("после expand-all: %d строк", n)
	}
}

func TestModel_LoadFailureStatus(t *testing.T) {
	var calls []datatable.LoadParams
	m := newModel(t, listPage(5, &calls))

	reqErr := &request.Error{Kind: request.KindBusiness, Code: request.CodeInsufficientPermission, Message: "权限不足"}
	next, _ := m.Update(loadedMsg{err: reqErr})
	m = next.(Model)
	if m.status != statusLoadFailed {
		t.Errorf("status = %q, ожидалось %q", m.status, statusLoadFailed)
	}
	if strings.Contains(m.View(), "权限不足") {
		t.Error("текст ошибки запроса продублирован в строке статуса")
	}

	next, _ = m.Update(loadedMsg{err: fmt.Errorf("страница: %w", request.ErrCanceled)})
	m = next.(Model)
	if m.status != "" {
		t.Errorf("status после отмены = %q", m.status)
	}

	next, _ = m.Update(loadedMsg{err: fmt.Errorf("неизвестный столбец")})
	m = next.(Model)
	if m.status != "неизвестный столбец" {
		t.Errorf("status локальной ошибки = %q", m.status)
	}
}

func TestPlain(t *testing.T) {
	var calls []datatable.LoadParams
	page := listPage(25, &calls)
	table := datatable.New(page.TableConfig(10))

	var buf bytes.Buffer
	if err := Plain(context.Background(), &buf, page, table); err != nil {
		t.Fatalf("Plain: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"用户管理", "user-01", "user-10", "共 25 条，显示第 1-10 条", "[1]", "10 条/页"} {
		if !strings.Contains(out, want) {
			t.Errorf("нет %q в выводе:\n%s", want, out)
		}
	}
	if strings.Contains(out, "user-11") {
		t.Error("вывод содержит вторую страницу")
	}
}

func TestFit(t *testing.T) {
	// ширина CJK-символа — 2
	if got := fit("用户管理系统", 6, datatable.AlignLeft); got != "用户… " {
		t.Errorf("fit = %q", got)
	}
	if got := fit("7", 3, datatable.AlignRight); got != "  7" {
		t.Errorf("fit right = %q", got)
	}
	if got := fit("ab", 6, datatable.AlignCenter); got != "  ab  " {
		t.Errorf("fit center = %q", got)
	}
}

func TestNextPageSize(t *testing.T) {
	p := datatable.DefaultPagination()
	if size, ok := nextPageSize(p, true); !ok || size != 20 {
		t.Errorf("up = %d, %v", size, ok)
	}
	if _, ok := nextPageSize(p, false); ok {
		t.Error("меньше минимального размера")
	}
}
