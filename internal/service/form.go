package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/validation"
)

const (
	msgNull       = "This field may not be null."
	msgNotAString = "Not a valid string."
)

// FormValue is one decoded request field. JSON scalars and single multipart
// values hold one element; JSON arrays and repeated multipart keys set IsList.
type FormValue struct {
	Values []string
	IsList bool
	IsNull bool
	// Invalid marks shapes no field accepts, such as JSON objects.
	Invalid bool
	// Bool marks a JSON true or false, which text and number fields reject.
	Bool bool
}

// Scalar builds a single-valued FormValue.
func Scalar(v string) FormValue {
	return FormValue{Values: []string{v}}
}

// List builds a list FormValue.
func List(vs ...string) FormValue {
	return FormValue{Values: vs, IsList: true}
}

// Null builds an explicit null FormValue.
func Null() FormValue {
	return FormValue{IsNull: true}
}

// Form is a decoded request body keyed by field name. Absent keys are fields
// the client did not send.
type Form map[string]FormValue

// Has reports whether the client sent name.
func (f Form) Has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f Form) scalar(fe models.FieldErrors, name string) (string, bool) {
	v := f[name]
	switch {
	case v.IsNull:
		fe.Add(name, msgNull)
		return "", false
	case v.Invalid, v.Bool, v.IsList && len(v.Values) != 1:
		fe.Add(name, msgNotAString)
		return "", false
	case len(v.Values) == 0:
		return "", true
	}
	return v.Values[0], true
}

// Text reads a short text field. Required fields must be present (unless
// partial) and non-blank.
func (f Form) Text(fe models.FieldErrors, name string, required, partial bool) (string, bool) {
	if !f.Has(name) {
		if required && !partial {
			fe.Add(name, validation.MsgRequired)
		}
		return "", false
	}
	s, ok := f.scalar(fe, name)
	if !ok {
		return "", false
	}
	if required {
		if msg := validation.RequiredText(s); msg != "" {
			fe.Add(name, msg)
			return "", false
		}
		return s, true
	}
	if msg := validation.MaxLength(s, validation.MaxCharField); msg != "" {
		fe.Add(name, msg)
		return "", false
	}
	return s, true
}

// Int reads an integer field, enforcing min when min is non-nil.
func (f Form) Int(fe models.FieldErrors, name string, required, partial bool, min *int) (int, bool) {
	if !f.Has(name) {
		if required && !partial {
			fe.Add(name, validation.MsgRequired)
		}
		return 0, false
	}
	s, ok := f.scalar(fe, name)
	if !ok {
		return 0, false
	}
	n, err := parseInt(s)
	if err != nil {
		fe.Add(name, validation.MsgInvalidInt)
		return 0, false
	}
	if min != nil && n < *min {
		fe.Add(name, fmt.Sprintf(validation.MsgMinValue, *min))
		return 0, false
	}
	return n, true
}

// NullableInt reads an optional integer where null or blank clear the value.
func (f Form) NullableInt(fe models.FieldErrors, name string) (*int, bool) {
	v, present := f[name]
	if !present {
		return nil, false
	}
	if v.IsNull || (!v.IsList && len(v.Values) == 1 && strings.TrimSpace(v.Values[0]) == "") {
		return nil, true
	}
	s, ok := f.scalar(fe, name)
	if !ok {
		return nil, false
	}
	n, err := parseInt(s)
	if err != nil {
		fe.Add(name, validation.MsgInvalidInt)
		return nil, false
	}
	return &n, true
}

// Price reads a decimal(5,2) amount.
func (f Form) Price(fe models.FieldErrors, name string, required, partial bool) (models.Price, bool) {
	if !f.Has(name) {
		if required && !partial {
			fe.Add(name, validation.MsgRequired)
		}
		return 0, false
	}
	s, ok := f.scalar(fe, name)
	if !ok {
		return 0, false
	}
	p, err := models.ParsePrice(s)
	if err != nil {
		fe.Add(name, err.Error())
		return 0, false
	}
	return p, true
}

// Date reads a YYYY-MM-DD date; null or blank clear it.
func (f Form) Date(fe models.FieldErrors, name string) (*time.Time, bool) {
	v, present := f[name]
	if !present {
		return nil, false
	}
	if v.IsNull || (!v.IsList && len(v.Values) == 1 && strings.TrimSpace(v.Values[0]) == "") {
		return nil, true
	}
	s, ok := f.scalar(fe, name)
	if !ok {
		return nil, false
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		fe.Add(name, validation.MsgInvalidDate)
		return nil, false
	}
	return &d, true
}

// IDs reads a list of primary keys. A single scalar is a one-element list; a
// multipart value may also be comma separated.
func (f Form) IDs(fe models.FieldErrors, name string) ([]uint, bool) {
	v, present := f[name]
	if !present {
		return nil, false
	}
	if v.IsNull {
		fe.Add(name, msgNull)
		return nil, false
	}
	if v.Bool {
		fe.Add(name, `Expected a list of items but got type "bool".`)
		return nil, false
	}
	if v.Invalid {
		fe.Add(name, `Expected a list of items but got type "dict".`)
		return nil, false
	}

	raw := v.Values
	if !v.IsList && len(raw) == 1 {
		raw = splitCSV(raw[0])
	}
	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil || id == 0 {
			fe.Add(name, validation.InvalidPk(s))
			continue
		}
		ids = append(ids, uint(id))
	}
	if fe.Has(name) {
		return nil, false
	}
	return ids, true
}

// ParseIDList parses a comma separated query parameter such as "1,2".
func ParseIDList(raw string) ([]uint, error) {
	parts := splitCSV(raw)
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseInt accepts integral JSON numbers such as "10" or "10.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || fl != float64(int(fl)) {
		return 0, strconv.ErrSyntax
	}
	return int(fl), nil
}

// Upload is a file received in a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}
