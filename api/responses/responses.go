package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// WriteSuccess writes payload as a 200 JSON response. Payload is one of the
// envelopes in pkg/types.
func WriteSuccess(w http.ResponseWriter, payload any) {
	WriteJSON(w, http.StatusOK, payload)
}

// WriteData wraps data in a SingleEnvelope.
func WriteData[E any](w http.ResponseWriter, data E, message string) {
	WriteJSON(w, http.StatusOK, types.SingleEnvelope[E]{Data: data, Message: message})
}

// WriteMutation wraps the result of a create, update or delete.
func WriteMutation[D any](w http.ResponseWriter, status int, data D, message string) {
	WriteJSON(w, status, types.MutationEnvelope[D]{Data: data, Message: message})
}

// WriteFile sends a binary attachment.
func WriteFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf(`{"level":"error","msg":"failed to write attachment","err":"%v"}`, err)
	}
}

// WriteError renders err as {"errors": [...]} with the status of its code.
// Internal failures are reported with the code's public message only.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	status := meta.HTTPStatus
	if s := typed.Status(); s >= 400 {
		status = s
	}

	payload := types.ErrorEnvelope{Errors: publicMessages(typed, meta)}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"status":        status,
			"pg_code":       dump.PGCode,
			"pg_constraint": dump.PGConstraint,
		})
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(logg.WithField(ctx, "error", dump.TopMessage), "request.rejected")
		}
	}

	WriteJSON(w, status, payload)
}

func publicMessages(typed *pkgerrors.Error, meta pkgerrors.Metadata) types.ErrorList {
	switch typed.Code() {
	case pkgerrors.CodeInternal, pkgerrors.CodeTransport, pkgerrors.CodeDecode:
		return types.ErrorList{meta.PublicMessage}
	}
	if msgs := typed.Messages(); len(msgs) > 0 {
		return msgs
	}
	if m := typed.Message(); m != "" {
		return types.ErrorList{m}
	}
	return types.ErrorList{meta.PublicMessage}
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
