package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// requestKey — ключ дедупликации: METHOD:путь:хэш(params):хэш(body).
// Пустые params/body дают пустой сегмент.
func requestKey(method, path string, params, body any) string {
	return strings.ToUpper(method) + ":" + normalizePath(path) + ":" + hashValue(params) + ":" + hashValue(body)
}

// normalizePath отбрасывает query, fragment и завершающий слэш.
func normalizePath(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// hashValue — структурный хэш значения. encoding/json сортирует ключи map,
// поэтому равные по содержимому значения дают равные хэши.
func hashValue(v any) string {
	if isEmpty(v) {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(fmt.Sprintf("%#v", v))
	}
	return strconv.FormatUint(xxhash.Sum64(b), 36)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return t == nil
	case map[string]string:
		return t == nil
	case url.Values:
		return t == nil
	case []byte:
		return t == nil
	case json.RawMessage:
		return t == nil
	default:
		return false
	}
}
