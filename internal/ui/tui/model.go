package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/pages"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// statusLoadFailed — строка статуса после неудачного запроса.
const statusLoadFailed = "加载失败"

// keyMap — клавиши интерактивной таблицы.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Sort        key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	SizeUp      key.Binding
	SizeDown    key.Binding
	Jump        key.Binding
	Search      key.Binding
	Reset       key.Binding
	Reload      key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "вверх")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "вниз")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "колонка")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "колонка")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "сортировка")),
		NextPage:    key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "след. страница")),
		PrevPage:    key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "пред. страница")),
		SizeUp:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "больше строк")),
		SizeDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "меньше строк")),
		Jump:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "перейти")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "поиск")),
		Reset:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "сброс поиска")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "обновить")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "раскрыть")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "раскрыть всё")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "свернуть всё")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "справка")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.NextPage, k.PrevPage, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Sort, k.Search, k.Reset, k.Reload},
		{k.NextPage, k.PrevPage, k.Jump, k.SizeUp, k.SizeDown},
		{k.Toggle, k.ExpandAll, k.CollapseAll, k.Help, k.Quit},
	}
}

// promptKind — назначение строки ввода.
type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptJump
)

// loadedMsg — завершение операции таблицы.
type loadedMsg struct{ err error }

// toastMsg — уведомление диспетчера запросов.
type toastMsg request.Toast

// Model — интерактивная страница консоли.
type Model struct {
	ctx    context.Context
	page   pages.Page
	table  *datatable.Table
	form   *datatable.SearchForm
	toasts <-chan request.Toast

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	prompt  promptKind
	// searchKey — поле, в которое пишет строка поиска
	searchKey string
	styles    styles

	focusCol int
	cursor   int
	status   string
	toast    string
	width    int
}

// New создаёт модель страницы. toasts может быть nil.
func New(ctx context.Context, page pages.Page, table *datatable.Table, toasts <-chan request.Toast) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	in := textinput.New()
	in.CharLimit = 100
	in.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:     ctx,
		page:    page,
		table:   table,
		form:    datatable.NewSearchForm(table.Columns()),
		toasts:  toasts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		input:   in,
		styles:  newStyles(),
	}
}

// Init запускает первую загрузку и ожидание уведомлений.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run(m.table.Mount), m.waitToast(), m.spinner.Tick)
}

// run выполняет операцию таблицы вне цикла событий.
func (m Model) run(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{err: op(ctx)}
	}
}

// loadStatus — строка статуса после загрузки. Текст сбоя запроса уже
// показан уведомлением диспетчера, здесь только отметка о нём.
func loadStatus(err error) string {
	switch {
	case err == nil, request.IsCanceled(err):
		return ""
	case isRequestError(err):
		return statusLoadFailed
	default:
		return err.Error()
	}
}

func isRequestError(err error) bool {
	_, ok := request.AsError(err)
	return ok
}

func (m Model) waitToast() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	ch := m.toasts
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(t)
	}
}

// Update обрабатывает сообщения bubbletea.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.status = loadStatus(msg.err)
		m.clampCursor()
		return m, nil

	case toastMsg:
		m.toast = msg.Title + ": " + msg.Description
		return m, m.waitToast()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.table.Columns()
	snap := m.table.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(len(snap.Rows)-1, m.cursor+1)
		m.cursor = max(0, m.cursor)
	case key.Matches(msg, m.keys.Left):
		m.focusCol = max(0, m.focusCol-1)
	case key.Matches(msg, m.keys.Right):
		m.focusCol = min(len(cols)-1, m.focusCol+1)
	case key.Matches(msg, m.keys.Sort):
		if m.focusCol < len(cols) && cols[m.focusCol].Sortable {
			field := cols[m.focusCol].SortField()
			return m, m.run(func(ctx context.Context) error { return m.table.Sort(ctx, field) })
		}
	case key.Matches(msg, m.keys.NextPage):
		page := snap.Pagination.Current + 1
		return m, m.run(func(ctx context.Context) error { return m.table.GoTo(ctx, page) })
	case key.Matches(msg, m.keys.PrevPage):
		page := snap.Pagination.Current - 1
		return m, m.run(func(ctx context.Context) error { return m.table.GoTo(ctx, page) })
	case key.Matches(msg, m.keys.SizeUp), key.Matches(msg, m.keys.SizeDown):
		size, ok := nextPageSize(snap.Pagination, key.Matches(msg, m.keys.SizeUp))
		if ok {
			return m, m.run(func(ctx context.Context) error { return m.table.ChangePageSize(ctx, size) })
		}
	case key.Matches(msg, m.keys.Jump):
		if snap.Pagination.ShowQuickJumper {
			return m.openPrompt(promptJump, "", "跳至")
		}
	case key.Matches(msg, m.keys.Search):
		if field, placeholder, ok := m.searchField(); ok {
			return m.openPrompt(promptSearch, field, placeholder)
		}
	case key.Matches(msg, m.keys.Reset):
		m.form.Reset()
		return m, m.run(m.table.Reset)
	case key.Matches(msg, m.keys.Reload):
		return m, m.run(m.table.Reload)
	case key.Matches(msg, m.keys.Toggle):
		if m.page.Tree && m.cursor < len(snap.Rows) && snap.Rows[m.cursor].HasChildren {
			m.table.ToggleExpand(snap.Rows[m.cursor].Key)
		}
	case key.Matches(msg, m.keys.ExpandAll):
		if m.page.Tree {
			m.table.ExpandAll()
		}
	case key.Matches(msg, m.keys.CollapseAll):
		if m.page.Tree {
			m.table.CollapseAll()
			m.clampCursor()
		}
	}
	return m, nil
}

// searchField — поле поиска: колонка в фокусе, если она searchable,
// иначе первое поле формы.
func (m Model) searchField() (field, placeholder string, ok bool) {
	fields := m.form.Fields()
	if len(fields) == 0 {
		return "", "", false
	}
	cols := m.table.Columns()
	if m.focusCol < len(cols) {
		for _, f := range fields {
			if f.Key == cols[m.focusCol].Key {
				return f.Key, f.Placeholder, true
			}
		}
	}
	return fields[0].Key, fields[0].Placeholder, true
}

func (m Model) openPrompt(kind promptKind, fieldKey, placeholder string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.searchKey = fieldKey
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		switch kind {
		case promptJump:
			return m, m.run(func(ctx context.Context) error { return m.table.Jump(ctx, value) })
		case promptSearch:
			if err := m.form.SetText(m.searchKey, value); err != nil {
				m.status = err.Error()
				return m, nil
			}
			values := m.form.Submit()
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error { return m.table.Search(ctx, values) })
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) clampCursor() {
	n := len(m.table.Snapshot().Rows)
	m.cursor = max(0, min(m.cursor, n-1))
}

// nextPageSize — соседний размер из PageSizeOptions.
func nextPageSize(p datatable.Pagination, up bool) (int, bool) {
	opts := slices.Clone(p.PageSizeOptions)
	slices.Sort(opts)
	i := slices.Index(opts, p.PageSize)
	if i < 0 {
		return 0, false
	}
	if up {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(opts) {
		return 0, false
	}
	return opts[i], true
}

// View отрисовывает страницу.
func (m Model) View() string {
	snap := m.table.Snapshot()
	cols := m.table.Columns()
	st := m.styles

	var b strings.Builder
	title := st.title.Render(m.page.Title)
	if snap.Loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title)
	b.WriteByte('\n')
	if s := renderSearch(snap.SearchValues, cols, st); s != "" {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	b.WriteString(st.box.Render(strings.TrimRight(
		renderTable(cols, snap, m.page.Tree, m.focusCol, m.cursor, st), "\n")))
	b.WriteByte('\n')

	if snap.ShowPagination {
		b.WriteString(renderPagination(snap.Pagination, st))
		b.WriteByte('\n')
	}
	if m.prompt != promptNone {
		b.WriteString(m.input.View())
		b.WriteByte('\n')
	}
	if m.status != "" {
		b.WriteString(st.errorLine.Render(m.status))
		b.WriteByte('\n')
	}
	if m.toast != "" {
		b.WriteString(st.toastLine.Render(m.toast))
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run запускает интерактивный режим до выхода пользователя.
func Run(ctx context.Context, page pages.Page, table *datatable.Table, toasts <-chan request.Toast) error {
	_, err := tea.NewProgram(New(ctx, page, table, toasts), tea.WithContext(ctx)).Run()
	return err
}
