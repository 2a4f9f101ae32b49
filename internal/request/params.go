package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
)

// encodeParams приводит Params к url.Values.
// Структуры проходят через JSON, поэтому учитываются теги json и omitempty.
// nil-значения пропускаются, срезы дают повторяющиеся параметры.
func encodeParams(params any) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	case map[string]string:
		out := make(url.Values, len(p))
		for k, v := range p {
			out.Set(k, v)
		}
		return out, nil
	case map[string]any:
		return valuesFromMap(p), nil
	}

	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("сериализация параметров: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("параметры запроса должны быть объектом: %w", err)
	}
	return valuesFromMap(m), nil
}

func valuesFromMap(m map[string]any) url.Values {
	out := make(url.Values, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			continue
		case []any:
			for _, item := range v {
				if item != nil {
					out.Add(k, fmt.Sprint(item))
				}
			}
		case []string:
			for _, item := range v {
				out.Add(k, item)
			}
		default:
			out.Set(k, fmt.Sprint(v))
		}
	}
	return out
}
