package service

import (
	"testing"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestForm_TextAndInt(t *testing.T) {
	fe := models.FieldErrors{}
	form := Form{
		"title":  Scalar("Soup"),
		"long":   Scalar(string(make([]byte, 300))),
		"n":      Scalar("10.0"),
		"frac":   Scalar("1.5"),
		"null":   Null(),
		"object": {Invalid: true},
		"flag":   {Bool: true},
	}

	v, ok := form.Text(fe, "title", true, false)
	assert.True(t, ok)
	assert.Equal(t, "Soup", v)

	_, ok = form.Text(fe, "long", false, false)
	assert.False(t, ok)
	assert.Equal(t, []string{"Ensure this field has no more than 255 characters."}, fe["long"])

	n, ok := form.Int(fe, "n", true, false, nil)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = form.Int(fe, "frac", true, false, nil)
	assert.False(t, ok)

	_, ok = form.Text(fe, "null", false, false)
	assert.False(t, ok)
	assert.Equal(t, []string{msgNull}, fe["null"])

	_, ok = form.Text(fe, "object", false, false)
	assert.False(t, ok)

	_, ok = form.Text(fe, "flag", true, false)
	assert.False(t, ok)
	assert.Equal(t, []string{msgNotAString}, fe["flag"])

	_, ok = form.Int(fe, "flag", false, false, nil)
	assert.False(t, ok)

	_, ok = form.Text(fe, "missing", true, true)
	assert.False(t, ok)
	assert.False(t, fe.Has("missing"), "partial updates do not require fields")
}

func TestForm_IDs(t *testing.T) {
	tests := []struct {
		name    string
		value   FormValue
		want    []uint
		wantErr bool
	}{
		{name: "json list", value: List("1", "2"), want: []uint{1, 2}},
		{name: "csv scalar", value: Scalar("3, 4"), want: []uint{3, 4}},
		{name: "empty list", value: List(), want: []uint{}},
		{name: "bad id", value: List("1", "x"), wantErr: true},
		{name: "zero", value: Scalar("0"), wantErr: true},
		{name: "null", value: Null(), wantErr: true},
		{name: "bool", value: FormValue{Bool: true}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := models.FieldErrors{}
			ids, ok := Form{"tags": tt.value}.IDs(fe, "tags")
			if tt.wantErr {
				assert.False(t, ok)
				assert.True(t, fe.Has("tags"))
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("1, 2,,3")
	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	_, err = ParseIDList("1,a")
	assert.Error(t, err)
}
