package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/validation"
)

const maxBodyBytes = 10 << 20

// DecodeBody decodes a JSON or multipart request into dest and validates it.
func DecodeBody(r *http.Request, dest any) error {
	if isMultipart(r) {
		return DecodeForm(r, dest)
	}
	return DecodeJSONBody(r, dest)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func DecodeJSONBody(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	return validate(dest, "")
}

// DecodeJSONArray decodes a JSON array body and validates every element.
// Messages name the failing element by index.
func DecodeJSONArray[T any](r *http.Request) ([]T, error) {
	var items []T
	if err := decodeJSON(r, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty array").WithMessages("At least one item is required")
	}
	for i := range items {
		if err := validate(&items[i], fmt.Sprintf("[%d] ", i)); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing request body").WithMessages("Request body is required")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithMessages("Request body is not valid JSON for this endpoint").
			WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func validate(dest any, prefix string) error {
	if reflect.Indirect(reflect.ValueOf(dest)).Kind() != reflect.Struct {
		return nil
	}
	if err := validation.Struct(dest); err != nil {
		msgs := validation.Messages(err)
		for i := range msgs {
			msgs[i] = prefix + msgs[i]
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").WithMessages(msgs...)
	}
	return nil
}
