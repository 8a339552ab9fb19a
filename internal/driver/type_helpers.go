package driver

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func recordString(rec *neo4j.Record, key string) string {
	if s := recordStringPtr(rec, key); s != nil {
		return *s
	}
	return ""
}

func recordStringPtr(rec *neo4j.Record, key string) *string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func recordInt(rec *neo4j.Record, key string) int {
	if n := recordIntPtr(rec, key); n != nil {
		return *n
	}
	return 0
}

func recordIntPtr(rec *neo4j.Record, key string) *int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil
	}
	return &n
}

func recordStrings(rec *neo4j.Record, key string) []string {
	out := []string{}
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return out
	}
	switch list := v.(type) {
	case []string:
		return append(out, list...)
	case []interface{}:
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func recordInts(rec *neo4j.Record, key string) []int {
	out := []int{}
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return out
	}
	list, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range list {
		if n, ok := toInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// toInt accepts the integer shapes bolt and hand-built records produce.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, n := range in {
		out[i] = int64(n)
	}
	return out
}

func intPtrParam(n *int) interface{} {
	if n == nil {
		return nil
	}
	return int64(*n)
}

func stringPtrParam(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
