package sagepay

import (
	"fmt"
	"net/url"
	"strings"
)

// Fields is a decoded SagePay Key=Value document.
type Fields map[string]string

// Get returns the value for key, "" when absent.
func (f Fields) Get(key string) string {
	return f[key]
}

// Decode parses a SagePay reply body. Each non-empty line is Key=Value and
// only the first '=' separates key from value, so values such as NextURL
// may carry their own query strings.
func Decode(raw string) (Fields, error) {
	fields := make(Fields)
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: line %d has no key", ErrMalformedResponse, i+1)
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, nil
}

// Encode writes fields as CRLF terminated Key=Value lines following order.
// Keys missing from fields are skipped.
func Encode(fields Fields, order []string) string {
	var b strings.Builder
	for _, key := range order {
		value, ok := fields[key]
		if !ok {
			continue
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	return b.String()
}

// Form converts fields into a POST body.
func (f Fields) Form() url.Values {
	form := make(url.Values, len(f))
	for k, v := range f {
		form.Set(k, v)
	}
	return form
}

// FieldsFromForm keeps the first value of every key.
func FieldsFromForm(form url.Values) Fields {
	fields := make(Fields, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields
}
