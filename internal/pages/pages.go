// Пакет pages — определения страниц консоли: колонки таблицы и LoadFunc,
// переводящая параметры таблицы в запрос к REST API и обратно в строки.
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
)

// Page — страница консоли.
type Page struct {
	// Path — путь страницы для проверки доступа (session.CheckRoute)
	Path    string
	Title   string
	Columns []datatable.Column
	Load    datatable.LoadFunc
	// Tree — строки собираются в дерево по parentId
	Tree bool
}

// TableConfig — настройки datatable для страницы.
func (p Page) TableConfig(pageSize int) datatable.Config {
	pg := datatable.DefaultPagination()
	if pageSize > 0 {
		pg.PageSize = pageSize
	}
	return datatable.Config{
		Columns:    p.Columns,
		Load:       p.Load,
		AutoLoad:   true,
		Pagination: &pg,
		RowKey:     "id",
		Tree:       p.Tree,
		ParentKey:  "parentId",
	}
}

// listQuery переводит параметры таблицы в page/limit/search/sortBy/sortOrder.
// search берётся из ключа "search", иначе из первого непустого searchKeys.
func listQuery(params datatable.LoadParams, searchKeys ...string) apiclient.ListQuery {
	q := apiclient.ListQuery{
		Page:  params.Pagination.Current,
		Limit: params.Pagination.PageSize,
	}
	for _, k := range append([]string{"search"}, searchKeys...) {
		if s := textValue(params.SearchValues[k]); s != "" {
			q.Search = s
			break
		}
	}
	if params.Sorter != nil && params.Sorter.Field != "" {
		q.SortBy = params.Sorter.Field
		q.SortOrder = string(params.Sorter.Order)
	}
	return q
}

func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return fmt.Sprint(val)
	}
}

// formatDate — дата в формате YYYY-MM-DD HH:mm:ss.
func formatDate(v any, _ datatable.Row, _ int) string {
	s := datatable.FormatValue(v)
	if s == "" {
		return "-"
	}
	return s
}

// orDash — значение или "-".
func orDash(v any, _ datatable.Row, _ int) string {
	if s := datatable.FormatValue(v); s != "" {
		return s
	}
	return "-"
}

// yesNo — "是"/"否".
func yesNo(v any, _ datatable.Row, _ int) string {
	if b, _ := v.(bool); b {
		return "是"
	}
	return "否"
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func strPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// dateColumn — сортируемая колонка даты.
func dateColumn(key, title string) datatable.Column {
	return datatable.Column{
		Key:       key,
		Title:     title,
		DataIndex: key,
		Width:     180,
		Sortable:  true,
		Render:    formatDate,
	}
}

// All — все страницы по порядку меню.
func All(c *apiclient.Client) []Page {
	return []Page{Users(c), Roles(c), Permissions(c)}
}

// loadWith оборачивает типизированную загрузку в LoadFunc.
func loadWith[Q any](query func(datatable.LoadParams) Q, fetch func(context.Context, Q) ([]datatable.Row, int, error)) datatable.LoadFunc {
	return func(ctx context.Context, params datatable.LoadParams) (datatable.LoadResult, error) {
		rows, total, err := fetch(ctx, query(params))
		if err != nil {
			return datatable.LoadResult{}, err
		}
		return datatable.LoadResult{Data: rows, Total: total}, nil
	}
}
