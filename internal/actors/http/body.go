package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rbroggi/gestionusers/internal/core/model"
)

const maxBodyBytes = 1 << 20

// userBody is the user payload of create and update requests. Absent fields stay nil.
type userBody struct {
	Nom    *scalar `json:"nom"`
	Prenom *scalar `json:"prenom"`
	Email  *scalar `json:"email"`
	Tel    *scalar `json:"tel"`
}

func (b userBody) patch() model.UserPatch {
	return model.UserPatch{
		Nom:    (*string)(b.Nom),
		Prenom: (*string)(b.Prenom),
		Email:  (*string)(b.Email),
		Tel:    (*string)(b.Tel),
	}
}

func (b userBody) createArgs() model.CreateUserArgs {
	return model.CreateUserArgs{
		Nom:    deref(b.Nom),
		Prenom: deref(b.Prenom),
		Email:  deref(b.Email),
		Tel:    deref(b.Tel),
	}
}

// scalar is a string field that also accepts JSON numbers and booleans, kept in their
// literal form, so {"tel": 12345678} reads as "12345678".
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*s = scalar(v)
	case json.Number:
		*s = scalar(v.String())
	case bool:
		*s = scalar(strconv.FormatBool(v))
	default:
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	return nil
}

// decodeUserBody reads a JSON or url-encoded form body. An empty body decodes to an empty userBody.
// Decoding failures are reported as *model.ValidationError.
func decodeUserBody(w http.ResponseWriter, r *http.Request) (userBody, error) {
	var body userBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return body, malformedBody(err)
		}
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(maxBodyBytes) }
		}
		if err := parse(); err != nil {
			return body, malformedBody(err)
		}
		body.Nom = (*scalar)(formValue(r, "nom"))
		body.Prenom = (*scalar)(formValue(r, "prenom"))
		body.Email = (*scalar)(formValue(r, "email"))
		body.Tel = (*scalar)(formValue(r, "tel"))
	default:
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return body, malformedBody(err)
		}
	}
	return body, nil
}

func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func malformedBody(err error) error {
	return &model.ValidationError{Fields: []model.FieldError{{Field: "body", Message: err.Error()}}}
}

func deref(s *scalar) string {
	if s == nil {
		return ""
	}
	return string(*s)
}
