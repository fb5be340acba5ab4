package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

// PathID parses the positive integer route parameter name.
func PathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").
			WithMessages(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// ListQuery reads the paging, search and sort parameters of a list request.
func ListQuery(r *http.Request) pagination.Query {
	return pagination.ParseValues(r.URL.Query())
}

// DecodeIDs reads the ids of a bulk delete. Multipart requests repeat field
// once per id; other requests carry a bare JSON array.
func DecodeIDs(r *http.Request, field string) ([]int64, error) {
	var raw []string
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body").
				WithMessages("Request body is not a valid multipart form")
		}
		raw = r.MultipartForm.Value[field]
	} else {
		var ids []int64
		if r.Body != nil {
			defer func() {
				_, _ = io.Copy(io.Discard, r.Body)
			}()
			if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&ids); err != nil && !errors.Is(err, io.EOF) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id array").
					WithMessages("Request body must be a JSON array of ids")
			}
		}
		for _, id := range ids {
			raw = append(raw, strconv.FormatInt(id, 10))
		}
	}

	ids := make([]int64, 0, len(raw))
	for _, value := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").
				WithMessages(fmt.Sprintf("%q is not a valid id", value))
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no ids").WithMessages("At least one id is required")
	}
	return ids, nil
}
