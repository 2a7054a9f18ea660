package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

var errBadBody = models.NewValidationError("JSON parse error - invalid request body.")

// decodeForm reads a JSON or multipart body into a service.Form. When
// fileField is set and the body is multipart, the first file under that
// name is returned as an Upload.
func decodeForm(c *fiber.Ctx, fileField string) (service.Form, *service.Upload, error) {
	if isMultipart(c) {
		return decodeMultipart(c, fileField)
	}
	form, err := decodeJSON(c.Body())
	return form, nil, err
}

func decodeJSON(body []byte) (service.Form, error) {
	form := service.Form{}
	if len(bytes.TrimSpace(body)) == 0 {
		return form, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errBadBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errBadBody
	}

	for k, v := range raw {
		form[k] = jsonValue(v)
	}
	return form, nil
}

func jsonValue(v any) service.FormValue {
	switch t := v.(type) {
	case nil:
		return service.Null()
	case []any:
		out := service.FormValue{IsList: true, Values: make([]string, 0, len(t))}
		for _, item := range t {
			s, ok := jsonScalar(item)
			if !ok {
				out.Invalid = true
				continue
			}
			out.Values = append(out.Values, s)
		}
		return out
	case bool:
		return service.FormValue{Bool: true}
	default:
		if s, ok := jsonScalar(v); ok {
			return service.Scalar(s)
		}
		return service.FormValue{Invalid: true}
	}
}

func jsonScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func decodeMultipart(c *fiber.Ctx, fileField string) (service.Form, *service.Upload, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, nil, models.NewValidationError("Multipart form parse error - invalid request body.")
	}

	form := service.Form{}
	for k, vs := range mf.Value {
		if len(vs) == 1 {
			form[k] = service.Scalar(vs[0])
		} else {
			form[k] = service.List(vs...)
		}
	}

	if fileField == "" {
		return form, nil, nil
	}
	files := mf.File[fileField]
	if len(files) == 0 {
		return form, nil, nil
	}
	up, err := readUpload(files[0])
	if err != nil {
		return nil, nil, err
	}
	return form, up, nil
}

func readUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}
