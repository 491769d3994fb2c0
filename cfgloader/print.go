package cfgloader

import (
	"log/slog"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// printConfig logs the loaded config in YAML form with `mask:"true"`
// fields hidden.
func printConfig(config any) {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	out, err := yaml.Marshal(maskedCopy(val).Interface())
	if err != nil {
		slog.Error("failed to marshal config", "error", err.Error())
		return
	}
	slog.Info("Loaded config:\n" + string(out))
}

// maskedCopy returns a deep copy of val with `mask:"true"` fields
// hidden. The original value is never modified.
func maskedCopy(val reflect.Value) reflect.Value {
	if !val.IsValid() {
		return val
	}

	switch val.Kind() { //nolint:exhaustive // scalars pass through unchanged
	case reflect.Ptr:
		if val.IsNil() {
			return val
		}
		out := reflect.New(val.Elem().Type())
		out.Elem().Set(maskedCopy(val.Elem()))
		return out

	case reflect.Interface:
		if val.IsNil() {
			return val
		}
		return maskedCopy(val.Elem())

	case reflect.Struct:
		return maskedStruct(val)

	default:
		return val
	}
}

func maskedStruct(val reflect.Value) reflect.Value {
	out := reflect.New(val.Type()).Elem()

	for i := range val.NumField() {
		src := val.Field(i)
		dst := out.Field(i)
		if !dst.CanSet() || !src.CanInterface() {
			continue
		}

		if val.Type().Field(i).Tag.Get("mask") == "true" {
			dst.Set(hidden(src))
		} else {
			dst.Set(maskedCopy(src))
		}
	}

	return out
}

// hidden replaces a masked leaf: strings become a same-length run of
// asterisks, containers are recursed into, and everything else is
// zeroed.
func hidden(val reflect.Value) reflect.Value {
	if !val.IsValid() {
		return val
	}

	switch val.Kind() { //nolint:exhaustive // remaining kinds are zeroed
	case reflect.String:
		return reflect.ValueOf(strings.Repeat("*", len(val.String())))

	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Interface, reflect.Ptr:
		return maskedCopy(val)

	default:
		return reflect.Zero(val.Type())
	}
}
