package web

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// ParamInt64 returns the path parameter key as an int64.
func ParamInt64(r *http.Request, key string) (int64, error) {
	v := r.PathValue(key)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("path parameter %s: %q is not an integer", key, v)
	}
	return id, nil
}

// QueryParam returns query parameters from the request.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// Validator interface for request validation
type validator interface {
	Validate() error
}

// DecodeForm decodes an application/x-www-form-urlencoded body into the
// struct pointed to by v. Fields are matched by their `form` tag. Missing
// fields keep their zero value. If v implements Validate, it is called.
func DecodeForm(r *http.Request, v any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode form: expected pointer to struct, got %T", v)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		raw := r.PostForm.Get(name)

		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				b = raw == "on"
			}
			fv.SetBool(b)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
			if err != nil {
				return fmt.Errorf("decode form: field %s: %w", name, err)
			}
			fv.SetInt(n)
		default:
			return fmt.Errorf("decode form: field %s: unsupported kind %s", name, fv.Kind())
		}
	}

	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
	}
	return nil
}
