package logloader

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// Maximum recursion depth to prevent stack overflow
const maxDumpDepth = 10

// maxDumpElements caps how many slice/array elements are written.
const maxDumpElements = 10

// Dump writes v as one debug record. Exported struct fields, map entries
// and the first elements of slices are flattened into dotted keys under
// "dump", e.g. dump.Inner.Value or dump[2].
func (l *logger) Dump(v interface{}) {
	ev := l.Log(zerolog.LevelDebugValue)
	if !ev.Enabled() {
		ev.Send()
		return
	}
	fields := make(map[string]interface{})
	dumpValue(fields, reflect.ValueOf(v), "dump", make(map[uintptr]bool), 0)
	ev.Fields(fields).Msg("Dump")
}

func dumpValue(out map[string]interface{}, val reflect.Value, prefix string, visited map[uintptr]bool, depth int) {
	if depth > maxDumpDepth {
		out[prefix] = "<max depth reached>"
		return
	}

	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			out[prefix] = nil
			return
		}
		if val.Kind() == reflect.Ptr {
			ptr := val.Pointer()
			if visited[ptr] {
				out[prefix] = "<circular reference>"
				return
			}
			visited[ptr] = true
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Invalid:
		out[prefix] = nil
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			if !typ.Field(i).IsExported() {
				continue
			}
			dumpValue(out, val.Field(i), prefix+"."+typ.Field(i).Name, visited, depth+1)
		}
	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface())
			dumpValue(out, iter.Value(), key, visited, depth+1)
		}
	case reflect.Slice, reflect.Array:
		n := val.Len()
		for i := 0; i < n && i < maxDumpElements; i++ {
			dumpValue(out, val.Index(i), fmt.Sprintf("%s[%d]", prefix, i), visited, depth+1)
		}
		if n > maxDumpElements {
			out[prefix+".more"] = n - maxDumpElements
		}
	default:
		if val.CanInterface() {
			out[prefix] = val.Interface()
		} else {
			out[prefix] = val.String()
		}
	}
}
