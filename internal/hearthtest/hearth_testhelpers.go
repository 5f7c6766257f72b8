// Package hearthtest builds API requests and reads JSON responses for
// handler tests.
package hearthtest

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
)

// GetJSONField reads field from the recorded JSON body. Nested fields are
// addressed with dots, as in "user.id". Whole numbers come back as int64
// and other numbers as float64, inside arrays and objects too.
func GetJSONField(w *httptest.ResponseRecorder, field string) (any, error) {
	var body map[string]any
	decoder := json.NewDecoder(strings.NewReader(w.Body.String()))
	decoder.UseNumber()
	err := decoder.Decode(&body)
	if err != nil {
		return nil, err
	}

	var val any = body
	for _, key := range strings.Split(field, ".") {
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		val, ok = obj[key]
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}

	return normalize(val), nil
}

// normalize converts every json.Number in v, however deeply nested.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
	}
	return v
}
