package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"gridedit/internal/model"

	"github.com/charmbracelet/log"
	"github.com/itchyny/gojq"
)

const defaultRuleMessage = "invalid value"

func compileExpr(src string, vars ...string) (*gojq.Code, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, err
	}
	return gojq.Compile(q, gojq.WithVariables(vars))
}

// first runs code and returns its first output.
func first(code *gojq.Code, input any, vars ...any) (any, bool, error) {
	iter := code.Run(input, vars...)
	v, ok := iter.Next()
	if !ok {
		return nil, false, nil
	}
	if err, isErr := v.(error); isErr {
		var halt *gojq.HaltError
		if errors.As(err, &halt) && halt.Value() == nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

func compilePredicate(src string) (func(model.Row) bool, error) {
	code, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return func(r model.Row) bool {
		v, ok, err := first(code, jqValue(r))
		if err != nil {
			log.Debug("total predicate failed", "where", src, "err", err)
			return false
		}
		return ok && truthy(v)
	}, nil
}

func compileRule(when, message string) (model.MessageFunc, error) {
	if strings.TrimSpace(when) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	code, err := compileExpr(when, "$value", "$rows")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		message = defaultRuleMessage
	}
	var cache rowsCache
	return func(value any, rows []model.Row) (string, bool) {
		jv := jqValue(value)
		v, ok, err := first(code, jv, jv, cache.get(rows))
		if err != nil {
			log.Debug("validation rule failed", "when", when, "err", err)
			return "", false
		}
		if !ok {
			return "", false
		}
		if s, isString := v.(string); isString {
			return s, s != ""
		}
		if truthy(v) {
			return message, true
		}
		return "", false
	}, nil
}

// rowsCache keeps the converted $rows of the last row set a rule saw.
// A validation pass hands every cell the same slice, so it is converted
// once per pass. Callers replace the slice rather than edit it in place.
type rowsCache struct {
	mu        sync.Mutex
	src       []model.Row
	converted []any
	misses    int
}

func (c *rowsCache) get(rows []model.Row) []any {
	if len(rows) == 0 {
		return []any{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.src) == len(rows) && &c.src[0] == &rows[0] {
		return c.converted
	}
	c.misses++
	c.src = rows
	c.converted = jqRows(rows)
	return c.converted
}

func jqRows(rows []model.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = jqValue(r)
	}
	return out
}

// jqValue converts row values into the types gojq accepts.
func jqValue(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64, int:
		return t
	case model.Row:
		return jqValue(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jqValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jqValue(val)
		}
		return out
	case []model.Row:
		return jqRows(t)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return normalizeInt(t)
	case float32:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func normalizeInt(v any) any {
	var n int64
	switch t := v.(type) {
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return float64(t)
		}
		n = int64(t)
	}
	if n >= math.MinInt && n <= math.MaxInt {
		return int(n)
	}
	return float64(n)
}
