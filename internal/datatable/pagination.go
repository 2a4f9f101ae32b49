package datatable

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// windowSize — сколько номеров страниц показывать подряд.
const windowSize = 5

// DefaultPageSizeOptions — варианты размера страницы по умолчанию.
var DefaultPageSizeOptions = []int{10, 20, 50, 100}

// Pagination — состояние пагинации. Current >= 1, Total >= 0.
type Pagination struct {
	Current          int
	PageSize         int
	Total            int
	ShowSizeChanger  bool
	ShowQuickJumper  bool
	ShowTotal        bool
	PageSizeOptions  []int
	HideOnSinglePage bool
	// MinShowTotal — при Total меньше этого пагинация скрыта
	MinShowTotal int
}

// DefaultPagination — первая страница по 10 записей.
func DefaultPagination() Pagination {
	return Pagination{
		Current:          1,
		PageSize:         10,
		ShowSizeChanger:  true,
		ShowQuickJumper:  true,
		ShowTotal:        true,
		PageSizeOptions:  slices.Clone(DefaultPageSizeOptions),
		HideOnSinglePage: true,
	}
}

// normalize приводит состояние к инвариантам.
func (p Pagination) normalize() Pagination {
	if len(p.PageSizeOptions) == 0 {
		p.PageSizeOptions = slices.Clone(DefaultPageSizeOptions)
	}
	if p.PageSize < 1 {
		p.PageSize = p.PageSizeOptions[0]
	}
	if p.Current < 1 {
		p.Current = 1
	}
	if p.Total < 0 {
		p.Total = 0
	}
	return p
}

// TotalPages — количество страниц.
func (p Pagination) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Visible — политика показа пагинации. На загрузку данных не влияет.
func (p Pagination) Visible() bool {
	if p.HideOnSinglePage && p.TotalPages() <= 1 {
		return false
	}
	return p.Total >= p.MinShowTotal
}

// PageItem — кнопка пагинации: номер страницы или многоточие.
type PageItem struct {
	Page     int
	Ellipsis bool
}

func (i PageItem) String() string {
	if i.Ellipsis {
		return "..."
	}
	return strconv.Itoa(i.Page)
}

// Items — номера страниц: все, если их не больше пяти, иначе окно из пяти
// вокруг текущей с "1 ..." в начале и "... N" в конце.
func (p Pagination) Items() []PageItem {
	total := p.TotalPages()
	var items []PageItem

	if total <= windowSize {
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Page: i})
		}
		return items
	}

	start := max(1, p.Current-windowSize/2)
	end := min(total, start+windowSize-1)
	if end-start < windowSize-1 {
		start = max(1, end-windowSize+1)
	}

	if start > 1 {
		items = append(items, PageItem{Page: 1})
		if start > 2 {
			items = append(items, PageItem{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Page: i})
	}
	if end < total {
		if end < total-1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: total})
	}
	return items
}

// GoTo переходит на page, если она в [1, TotalPages] и не текущая.
func (p Pagination) GoTo(page int) (Pagination, bool) {
	if page < 1 || page > p.TotalPages() || page == p.Current {
		return p, false
	}
	p.Current = page
	return p, true
}

// WithPageSize меняет размер страницы; Current = min(Current, ceil(Total/size)),
// но не меньше 1. Размер должен входить в PageSizeOptions.
func (p Pagination) WithPageSize(size int) (Pagination, bool) {
	if size < 1 || (len(p.PageSizeOptions) > 0 && !slices.Contains(p.PageSizeOptions, size)) {
		return p, false
	}
	p.PageSize = size
	p.Current = max(1, min(p.Current, p.TotalPages()))
	return p, true
}

// Jump — быстрый переход по введённому номеру.
func (p Pagination) Jump(input string) (Pagination, bool) {
	page, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return p, false
	}
	return p.GoTo(page)
}

// Range — номера первой и последней записи текущей страницы.
func (p Pagination) Range() (start, end int) {
	if p.Total == 0 {
		return 0, 0
	}
	start = (p.Current-1)*p.PageSize + 1
	end = min(p.Current*p.PageSize, p.Total)
	return start, end
}

// Summary — строка "共 N 条，显示第 a-b 条"; пусто при Total = 0.
func (p Pagination) Summary() string {
	if p.Total == 0 {
		return ""
	}
	start, end := p.Range()
	return fmt.Sprintf("共 %d 条，显示第 %d-%d 条", p.Total, start, end)
}
