package datatable

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// Config — настройки таблицы.
type Config struct {
	// Columns — колонки; Key уникален.
	Columns []Column
	// Rows — статические данные (без Load).
	Rows []Row
	// Load — загрузка страницы; при наличии таблица управляется данными.
	Load LoadFunc
	// AutoLoad — загрузить первую страницу в Mount.
	AutoLoad bool
	// Pagination — начальная пагинация; nil — DefaultPagination.
	Pagination *Pagination
	// RowKey — поле ключа строки (по умолчанию "id").
	RowKey string
	// RowKeyFunc — ключ строки функцией; приоритетнее RowKey.
	RowKeyFunc func(Row) string
	// Tree — древовидный режим.
	Tree bool
	// ParentKey — поле родителя (по умолчанию "parentId").
	ParentKey string
	// DefaultExpandAll — раскрыть всё после первой загрузки.
	DefaultExpandAll bool
	// OnPaginationChange вызывается при смене страницы или размера.
	OnPaginationChange func(Pagination)
	Logger             *slog.Logger
}

// Snapshot — состояние таблицы для отрисовки.
type Snapshot struct {
	Rows           []DisplayRow
	Pagination     Pagination
	ShowPagination bool
	Sorter         *Sorter
	SearchValues   SearchValues
	Loading        bool
	// Err — ошибка последней загрузки (строки при этом прежние)
	Err error
}

// Empty — нечего показывать ("暂无数据").
func (s Snapshot) Empty() bool { return len(s.Rows) == 0 && !s.Loading }

// Table — движок таблицы. Безопасен для вызова из нескольких горутин;
// LoadFunc выполняется вне блокировки.
type Table struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	rows       []Row
	pagination Pagination
	search     SearchValues
	sorter     *Sorter
	expanded   map[string]bool
	loading    bool
	lastErr    error
	// seq — номер последней запущенной загрузки; применяется только она
	seq uint64

	autoExpanded bool
}

// New создаёт таблицу.
func New(cfg Config) *Table {
	if cfg.RowKey == "" {
		cfg.RowKey = "id"
	}
	if cfg.ParentKey == "" {
		cfg.ParentKey = "parentId"
	}
	p := DefaultPagination()
	if cfg.Pagination != nil {
		p = cfg.Pagination.normalize()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Table{
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "datatable")),
		rows:       slices.Clone(cfg.Rows),
		pagination: p,
		search:     SearchValues{},
		expanded:   map[string]bool{},
	}
}

// Columns — колонки таблицы.
func (t *Table) Columns() []Column { return t.cfg.Columns }

// Mount выполняет первую загрузку, если включены AutoLoad и Load.
func (t *Table) Mount(ctx context.Context) error {
	if !t.cfg.AutoLoad || t.cfg.Load == nil {
		return nil
	}
	return t.Reload(ctx)
}

// Reload загружает текущую страницу с текущими параметрами.
func (t *Table) Reload(ctx context.Context) error {
	t.mu.Lock()
	params := t.paramsLocked()
	t.mu.Unlock()
	return t.fetch(ctx, params)
}

// Search применяет значения поиска (пустые отбрасываются) и
// загружает первую страницу.
func (t *Table) Search(ctx context.Context, values SearchValues) error {
	t.mu.Lock()
	t.search = Prune(values)
	t.pagination.Current = 1
	params := t.paramsLocked()
	t.mu.Unlock()
	return t.fetch(ctx, params)
}

// Reset очищает поиск и загружает первую страницу.
func (t *Table) Reset(ctx context.Context) error {
	return t.Search(ctx, nil)
}

// ChangePage задаёт страницу и размер, уведомляет OnPaginationChange
// и загружает данные.
func (t *Table) ChangePage(ctx context.Context, page, pageSize int) error {
	t.mu.Lock()
	t.pagination.Current = max(1, page)
	if pageSize > 0 {
		t.pagination.PageSize = pageSize
	}
	p := t.pagination
	params := t.paramsLocked()
	t.mu.Unlock()

	if t.cfg.OnPaginationChange != nil {
		t.cfg.OnPaginationChange(p)
	}
	return t.fetch(ctx, params)
}

// GoTo переходит на страницу, если она допустима и не текущая.
func (t *Table) GoTo(ctx context.Context, page int) error {
	t.mu.Lock()
	next, ok := t.pagination.GoTo(page)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return t.ChangePage(ctx, next.Current, next.PageSize)
}

// Jump — быстрый переход по введённому номеру.
func (t *Table) Jump(ctx context.Context, input string) error {
	t.mu.Lock()
	next, ok := t.pagination.Jump(input)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return t.ChangePage(ctx, next.Current, next.PageSize)
}

// ChangePageSize меняет размер страницы с пересчётом текущей.
func (t *Table) ChangePageSize(ctx context.Context, size int) error {
	t.mu.Lock()
	next, ok := t.pagination.WithPageSize(size)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return t.ChangePage(ctx, next.Current, next.PageSize)
}

// Sort переключает сортировку по field (нет → asc → desc → нет)
// и загружает данные.
func (t *Table) Sort(ctx context.Context, field string) error {
	t.mu.Lock()
	t.sorter = NextSorter(t.sorter, field)
	params := t.paramsLocked()
	t.mu.Unlock()
	return t.fetch(ctx, params)
}

// SetRows заменяет статические данные. С Load не используется.
func (t *Table) SetRows(rows []Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = slices.Clone(rows)
	if t.cfg.Load == nil {
		t.pagination.Total = len(rows)
	}
}

// ToggleExpand раскрывает или сворачивает строку key.
func (t *Table) ToggleExpand(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expanded[key] {
		delete(t.expanded, key)
	} else {
		t.expanded[key] = true
	}
}

// ExpandAll раскрывает все узлы, у которых есть дети.
func (t *Table) ExpandAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expandAllLocked()
}

// CollapseAll сворачивает всё.
func (t *Table) CollapseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.expanded)
}

// Snapshot возвращает копию состояния для отрисовки.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rows []DisplayRow
	if t.cfg.Tree {
		rows = Flatten(t.forestLocked(), t.expanded)
	} else {
		rows = make([]DisplayRow, len(t.rows))
		for i, r := range t.rows {
			rows[i] = DisplayRow{Key: t.RowKey(r, i), Row: r}
		}
	}

	var sorter *Sorter
	if t.sorter != nil {
		s := *t.sorter
		sorter = &s
	}
	p := t.pagination
	p.PageSizeOptions = slices.Clone(p.PageSizeOptions)

	return Snapshot{
		Rows:           rows,
		Pagination:     p,
		ShowPagination: p.Visible(),
		Sorter:         sorter,
		SearchValues:   maps.Clone(t.search),
		Loading:        t.loading,
		Err:            t.lastErr,
	}
}

// RowKey — ключ строки: RowKeyFunc, поле RowKey или индекс.
func (t *Table) RowKey(row Row, index int) string {
	if t.cfg.RowKeyFunc != nil {
		return t.cfg.RowKeyFunc(row)
	}
	if k := keyString(row[t.cfg.RowKey]); k != "" {
		return k
	}
	return strconv.Itoa(index)
}

// Cell форматирует ячейку колонки col.
func (t *Table) Cell(col Column, row Row, index int) string {
	return col.Cell(row, index)
}

func (t *Table) paramsLocked() LoadParams {
	var sorter *Sorter
	if t.sorter != nil {
		s := *t.sorter
		sorter = &s
	}
	return LoadParams{
		Pagination:   t.pagination,
		SearchValues: maps.Clone(t.search),
		Sorter:       sorter,
	}
}

func (t *Table) forestLocked() []*Node {
	return BuildTree(t.rows, t.cfg.RowKey, t.cfg.ParentKey, t.RowKey)
}

func (t *Table) expandAllLocked() {
	clear(t.expanded)
	for _, k := range InternalKeys(t.forestLocked()) {
		t.expanded[k] = true
	}
}

// fetch вызывает Load и применяет результат, только если за это время
// не была запущена более новая загрузка. Ошибка логируется, прежние
// строки и total остаются.
func (t *Table) fetch(ctx context.Context, params LoadParams) error {
	if t.cfg.Load == nil {
		return nil
	}

	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.loading = true
	t.mu.Unlock()

	res, err := t.cfg.Load(ctx, params)

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq {
		t.logger.Debug("Устаревший ответ отброшен",
			slog.Uint64("seq", seq),
			slog.Uint64("latest", t.seq),
		)
		return nil
	}
	t.loading = false

	if err != nil {
		if request.IsCanceled(err) || errors.Is(err, context.Canceled) {
			t.logger.Debug("Загрузка отменена", slog.Uint64("seq", seq))
			return nil
		}
		t.lastErr = err
		t.logger.Error("Не удалось загрузить данные",
			slog.Int("page", params.Pagination.Current),
			slog.Int("page_size", params.Pagination.PageSize),
			slog.String("error", err.Error()),
		)
		return err
	}

	t.lastErr = nil
	t.rows = res.Data
	t.pagination.Total = max(0, res.Total)
	if t.cfg.Tree && t.cfg.DefaultExpandAll && !t.autoExpanded {
		t.autoExpanded = true
		t.expandAllLocked()
	}
	return nil
}
