package server

import (
	"testing"

	"recipebox/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	form, err := decodeJSON([]byte(`{"title":"Soup","time_minutes":15,"price":4.5,"image":null,"tags":[1,"2"],"bad":{"x":1},"mixed":[1,{}],"flag":true,"flags":[1,false]}`))
	require.NoError(t, err)

	assert.Equal(t, service.Scalar("Soup"), form["title"])
	assert.Equal(t, service.Scalar("15"), form["time_minutes"])
	assert.Equal(t, service.Scalar("4.5"), form["price"])
	assert.True(t, form["image"].IsNull)
	assert.True(t, form["tags"].IsList)
	assert.Equal(t, []string{"1", "2"}, form["tags"].Values)
	assert.True(t, form["bad"].Invalid)
	assert.True(t, form["mixed"].Invalid)
	assert.Equal(t, service.FormValue{Bool: true}, form["flag"])
	assert.True(t, form["flags"].Invalid)
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := map[string]string{
		"truncated":      `{"title":`,
		"array body":     `[1,2]`,
		"trailing value": `{"a":1} {"b":2}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeJSON([]byte(body))
			assert.ErrorIs(t, err, errBadBody)
		})
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	form, err := decodeJSON([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, form)
}

func TestStatusCodeMapping(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404, 409, 500} {
		assert.Equal(t, status, statusForCode(codeForStatus(status)))
	}
	assert.Equal(t, "/media", mediaPrefix("/media/"))
	assert.Equal(t, "/media", mediaPrefix("https://cdn.example.com/media/"))
	assert.Equal(t, "/files", mediaPrefix("/files"))
}
