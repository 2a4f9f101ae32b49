package datatable

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// collapsedFields — сколько полей видно в свёрнутой форме.
const collapsedFields = 6

// DateLayout — формат ввода дат в поиске.
const DateLayout = "2006-01-02"

// ErrUnknownField — в форме нет поля с таким ключом.
var ErrUnknownField = errors.New("未知的搜索字段")

// Field — поле формы поиска.
type Field struct {
	Key         string
	Title       string
	Type        SearchType
	Placeholder string
	Props       SearchProps
}

// SearchForm — форма поиска по searchable-колонкам. Сеть не вызывает:
// только собирает значения для Table.Search.
type SearchForm struct {
	fields   []Field
	values   SearchValues
	expanded bool
}

// NewSearchForm строит поля по колонкам.
func NewSearchForm(columns []Column) *SearchForm {
	f := &SearchForm{values: SearchValues{}}
	for _, c := range columns {
		if !c.Searchable {
			continue
		}
		typ := c.SearchType
		if typ == "" {
			typ = SearchInput
		}
		f.fields = append(f.fields, Field{
			Key:         c.Key,
			Title:       c.Title,
			Type:        typ,
			Placeholder: placeholder(typ, c.Title, c.SearchProps.Placeholder),
			Props:       c.SearchProps,
		})
	}
	return f
}

func placeholder(typ SearchType, title, custom string) string {
	if custom != "" {
		return custom
	}
	switch typ {
	case SearchSelect, SearchDate:
		return "请选择" + title
	case SearchDateRange:
		return "请选择" + title + "范围"
	default:
		return "请输入" + title
	}
}

// Empty — нет ни одного поля поиска.
func (f *SearchForm) Empty() bool { return len(f.fields) == 0 }

// Fields — все поля.
func (f *SearchForm) Fields() []Field { return f.fields }

// Visible — поля, видимые сейчас: первые шесть в свёрнутом виде.
func (f *SearchForm) Visible() []Field {
	if f.expanded || len(f.fields) <= collapsedFields {
		return f.fields
	}
	return f.fields[:collapsedFields]
}

// ShowToggle — нужна ли кнопка «展开/收起».
func (f *SearchForm) ShowToggle() bool { return len(f.fields) > collapsedFields }

// Expanded — развёрнута ли форма.
func (f *SearchForm) Expanded() bool { return f.expanded }

// Toggle разворачивает или сворачивает форму.
func (f *SearchForm) Toggle() { f.expanded = !f.expanded }

// Set задаёт значение поля.
func (f *SearchForm) Set(key string, value any) error {
	if _, ok := f.field(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	f.values[key] = value
	return nil
}

// Value — текущее значение поля.
func (f *SearchForm) Value(key string) any { return f.values[key] }

// SetText разбирает текстовый ввод по типу поля: число, дата
// (2006-01-02), диапазон "from~to", вариант списка по подписи или значению.
func (f *SearchForm) SetText(key, raw string) error {
	field, ok := f.field(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		delete(f.values, key)
		return nil
	}

	var (
		v   any
		err error
	)
	switch field.Type {
	case SearchNumber:
		v, err = parseNumber(raw, field.Props)
	case SearchDate:
		v, err = time.ParseInLocation(DateLayout, raw, time.Local)
	case SearchDateRange:
		v, err = parseRange(raw)
	case SearchSelect:
		v, err = matchOption(raw, field.Props.Options)
	default:
		v = raw
	}
	if err != nil {
		return fmt.Errorf("%s: %w", field.Title, err)
	}
	f.values[key] = v
	return nil
}

// Submit возвращает только непустые значения.
func (f *SearchForm) Submit() SearchValues {
	return Prune(f.values)
}

// Reset очищает форму и возвращает пустые значения.
func (f *SearchForm) Reset() SearchValues {
	clear(f.values)
	return SearchValues{}
}

func (f *SearchForm) field(key string) (Field, bool) {
	for _, fl := range f.fields {
		if fl.Key == key {
			return fl, true
		}
	}
	return Field{}, false
}

// Prune копирует values без пустых значений: nil, "", NaN,
// пустых диапазонов и пустых срезов.
func Prune(values SearchValues) SearchValues {
	out := make(SearchValues, len(values))
	for k, v := range values {
		if !isEmptyValue(v) {
			out[k] = v
		}
	}
	return out
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return math.IsNaN(val)
	case DateRange:
		return val.From.IsZero() && val.To.IsZero()
	case time.Time:
		return val.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

func parseNumber(raw string, props SearchProps) (float64, error) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("请输入数字")
	}
	if props.Min != nil && n < *props.Min {
		return 0, fmt.Errorf("不能小于%v", *props.Min)
	}
	if props.Max != nil && n > *props.Max {
		return 0, fmt.Errorf("不能大于%v", *props.Max)
	}
	return n, nil
}

func parseRange(raw string) (DateRange, error) {
	from, to, ok := strings.Cut(raw, "~")
	if !ok {
		return DateRange{}, errors.New("日期范围格式应为 YYYY-MM-DD~YYYY-MM-DD")
	}
	var r DateRange
	var err error
	if s := strings.TrimSpace(from); s != "" {
		if r.From, err = time.ParseInLocation(DateLayout, s, time.Local); err != nil {
			return DateRange{}, err
		}
	}
	if s := strings.TrimSpace(to); s != "" {
		if r.To, err = time.ParseInLocation(DateLayout, s, time.Local); err != nil {
			return DateRange{}, err
		}
	}
	return r, nil
}

func matchOption(raw string, options []Option) (any, error) {
	for _, o := range options {
		if o.Label == raw || fmt.Sprint(o.Value) == raw {
			return o.Value, nil
		}
	}
	return nil, fmt.Errorf("无效的选项: %s", raw)
}
