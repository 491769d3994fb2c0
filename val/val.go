// Package val validates request and config schemas against their
// `validate` struct tags.
package val

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator() //nolint:gochecknoglobals // single shared validator instance

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(tagFieldName)
	return v
}

// tagFieldName resolves a field's wire name from its 'json', 'query',
// 'params' or 'form' tag, falling back to the Go field name. Error
// messages then point at the name clients actually sent.
func tagFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "params", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" {
			return name
		}
	}

	return fld.Name
}
