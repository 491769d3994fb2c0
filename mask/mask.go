// Package mask provides functionality for masking sensitive fields in structs before logging.
package mask

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const tagName = "mask"

// StructToOrdMap returns an ordered map of fields with sensitive values masked.
// Fields tagged with `mask:"true"` have their values replaced. Nested structs are
// flattened into dotted keys. Field names are resolved by priority:
// json tag > yaml tag > struct field name; fields tagged "-" are omitted.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	return structFields(reflect.ValueOf(v), "")
}

func structFields(val reflect.Value, prefix string) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()

	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return om
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return om
	}

	typ := val.Type()
	for i := range val.NumField() {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !fieldType.IsExported() {
			continue
		}

		name, skip := fieldName(fieldType)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case strings.EqualFold(fieldType.Tag.Get(tagName), "true"):
			om.Set(name, maskValue(field))
		case isStructLike(field):
			nested := structFields(field, name)
			for pair := nested.Oldest(); pair != nil; pair = pair.Next() {
				om.Set(pair.Key, pair.Value)
			}
		default:
			om.Set(name, field.Interface())
		}
	}

	return om
}

func isStructLike(val reflect.Value) bool {
	kind := val.Kind()
	if kind == reflect.Pointer {
		if val.IsNil() {
			return false
		}
		kind = val.Elem().Kind()
	}
	return kind == reflect.Struct
}

func maskValue(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // remaining kinds fall through to masking
	case reflect.Pointer:
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	case reflect.Slice, reflect.Map:
		if val.IsNil() {
			return nil
		}
	}

	// Zero values carry no secret worth hiding.
	if val.IsZero() {
		return val.Interface()
	}

	return fmt.Sprintf("***masked-%s***", kindLabel(val.Kind()))
}

// kindLabel groups kinds that mask identically under one label, so a
// masked int32 and int64 read the same in logs.
func kindLabel(k reflect.Kind) string {
	switch {
	case k == reflect.String:
		return "string"
	case k >= reflect.Int && k <= reflect.Int64:
		return "int"
	case k >= reflect.Uint && k <= reflect.Uint64:
		return "uint"
	case k == reflect.Float32 || k == reflect.Float64:
		return "float"
	case k == reflect.Bool:
		return "bool"
	case k == reflect.Struct:
		return "struct"
	case k == reflect.Slice || k == reflect.Array:
		return "slice"
	case k == reflect.Map:
		return "map"
	default:
		return k.String()
	}
}

// fieldName resolves the output name for a struct field.
// The second return value reports whether the field should be omitted.
func fieldName(field reflect.StructField) (string, bool) {
	for _, tag := range []string{"json", "yaml"} {
		v, ok := field.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if v == "-" {
			return "", true
		}
		if idx := strings.Index(v, ","); idx != -1 {
			v = v[:idx]
		}
		if v != "" {
			return v, false
		}
	}
	return field.Name, false
}
