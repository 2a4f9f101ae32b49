// Пакет datatable — движок таблицы данных: пагинация, поиск, сортировка
// и древовидный режим поверх внешней функции загрузки LoadFunc.
// Отрисовкой пакет не занимается: UI берёт Snapshot и форматирует ячейки
// через Cell.
package datatable

import (
	"context"
	"fmt"
	"time"
)

// Row — запись таблицы.
type Row = map[string]any

// Align — выравнивание колонки.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Fixed — закрепление колонки.
type Fixed string

const (
	FixedNone  Fixed = ""
	FixedLeft  Fixed = "left"
	FixedRight Fixed = "right"
)

// SearchType — вид поля поиска.
type SearchType string

const (
	SearchInput     SearchType = "input"
	SearchSelect    SearchType = "select"
	SearchNumber    SearchType = "number"
	SearchDate      SearchType = "date"
	SearchDateRange SearchType = "dateRange"
)

// Option — вариант выпадающего списка.
type Option struct {
	Label string
	Value any
}

// SearchProps — настройки поля поиска.
type SearchProps struct {
	Placeholder string
	Disabled    bool
	// Options — только для SearchSelect
	Options  []Option
	Multiple bool
	// Min, Max, Step — только для SearchNumber
	Min, Max, Step *float64
}

// RenderFunc форматирует значение ячейки. value — row[DataIndex]
// или вся запись, если DataIndex пуст.
type RenderFunc func(value any, row Row, index int) string

// Column — описание колонки. Key уникален в пределах таблицы.
type Column struct {
	Key         string
	Title       string
	DataIndex   string
	Width       int
	Align       Align
	Fixed       Fixed
	Sortable    bool
	Searchable  bool
	SearchType  SearchType
	SearchProps SearchProps
	Render      RenderFunc
}

// SortField — поле, по которому сортирует колонка.
func (c Column) SortField() string {
	if c.DataIndex != "" {
		return c.DataIndex
	}
	return c.Key
}

// Value возвращает значение колонки для записи.
func (c Column) Value(row Row) any {
	if c.DataIndex == "" {
		return row
	}
	return row[c.DataIndex]
}

// Cell форматирует ячейку: Render колонки или значение по умолчанию.
func (c Column) Cell(row Row, index int) string {
	v := c.Value(row)
	if c.Render != nil {
		return c.Render(v, row, index)
	}
	if c.DataIndex == "" {
		return ""
	}
	return FormatValue(v)
}

// FormatValue — отображение значения без пользовательского рендера.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Local().Format("2006-01-02 15:04:05")
	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatValue(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Order — направление сортировки.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Sorter — активная сортировка; nil — без сортировки.
type Sorter struct {
	Field string
	Order Order
}

// NextSorter — следующий шаг цикла для field:
// нет → asc → desc → нет. Другое поле заменяет сортировку целиком.
func NextSorter(cur *Sorter, field string) *Sorter {
	if cur == nil || cur.Field != field {
		return &Sorter{Field: field, Order: OrderAsc}
	}
	if cur.Order == OrderAsc {
		return &Sorter{Field: field, Order: OrderDesc}
	}
	return nil
}

// DateRange — значение поля SearchDateRange.
type DateRange struct {
	From time.Time
	To   time.Time
}

// SearchValues — значения поиска по ключу колонки.
type SearchValues map[string]any

// LoadParams — параметры загрузки страницы.
type LoadParams struct {
	Pagination   Pagination
	SearchValues SearchValues
	Sorter       *Sorter
}

// LoadResult — страница данных.
type LoadResult struct {
	Data  []Row
	Total int
}

// LoadFunc загружает страницу. Фильтрация, сортировка и пагинация
// целиком на стороне LoadFunc.
type LoadFunc func(ctx context.Context, params LoadParams) (LoadResult, error)
