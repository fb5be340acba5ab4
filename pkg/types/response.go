package types

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/angelmondragon/shopadmin/pkg/pagination"
)

// ListEnvelope wraps one page of a collection endpoint.
type ListEnvelope[E any] struct {
	Items []E `json:"items" validate:"dive"`
	pagination.MetaData
}

// SingleEnvelope wraps a get-by-id response.
type SingleEnvelope[E any] struct {
	Data    E      `json:"data"`
	Message string `json:"message"`
}

// MutationEnvelope wraps create/update/delete responses. D is an entity, a count, or a pointer left nil.
type MutationEnvelope[D any] struct {
	Data    D      `json:"data"`
	Message string `json:"message"`
}

// ErrorEnvelope is the body the API returns on non-2xx responses.
type ErrorEnvelope struct {
	Errors  ErrorList `json:"errors"`
	Message string    `json:"message,omitempty"`
}

// List returns every human-readable message carried by the envelope.
func (e ErrorEnvelope) List() []string {
	out := make([]string, 0, len(e.Errors)+1)
	for _, msg := range e.Errors {
		if strings.TrimSpace(msg) != "" {
			out = append(out, msg)
		}
	}
	if len(out) == 0 && strings.TrimSpace(e.Message) != "" {
		out = append(out, e.Message)
	}
	return out
}

// ErrorList accepts either a string array or a field→messages object.
type ErrorList []string

func (l *ErrorList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var byField map[string][]string
	if err := json.Unmarshal(data, &byField); err != nil {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = ErrorList{single}
		return nil
	}
	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	flat := make([]string, 0, len(byField))
	for _, field := range fields {
		flat = append(flat, byField[field]...)
	}
	*l = flat
	return nil
}
