package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/angelmondragon/shopadmin/api/responses"
	"github.com/angelmondragon/shopadmin/api/validators"
	"github.com/angelmondragon/shopadmin/internal/resources"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// ResourceService is the surface the generic handlers need from a resource service.
type ResourceService[E, I any] interface {
	Name() string
	List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[E], error)
	Get(ctx context.Context, id int64) (*E, error)
	Create(ctx context.Context, in I) (*E, error)
	CreateMany(ctx context.Context, inputs []I) ([]E, error)
	Update(ctx context.Context, id int64, in I) (*E, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// bodyID is implemented by inputs whose update endpoint carries the id in the body.
type bodyID interface {
	BodyID() int64
}

// Resource serves one contract over a resource service.
type Resource[E, I any] struct {
	svc      ResourceService[E, I]
	contract resources.Contract
	logg     *logger.Logger
}

func NewResource[E, I any](svc ResourceService[E, I], contract resources.Contract, logg *logger.Logger) *Resource[E, I] {
	return &Resource[E, I]{svc: svc, contract: contract, logg: logg}
}

func (h *Resource[E, I]) Contract() resources.Contract {
	return h.contract
}

func (h *Resource[E, I]) tag(r *http.Request, op string) context.Context {
	ctx := r.Context()
	if h.logg == nil {
		return ctx
	}
	ctx = h.logg.WithResource(ctx, h.contract.Resource)
	return h.logg.WithOperation(ctx, op)
}

func (h *Resource[E, I]) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.tag(r, "list")
		page, err := h.svc.List(ctx, validators.ListQuery(r))
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func (h *Resource[E, I]) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.tag(r, "get")
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		item, err := h.svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteData(w, *item, "")
	}
}

// Create accepts one input, or an array when the contract's create endpoint
// takes one.
func (h *Resource[E, I]) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.tag(r, "create")
		if h.contract.Create.ArrayBody {
			inputs, err := validators.DecodeJSONArray[I](r)
			if err != nil {
				responses.WriteError(ctx, h.logg, w, err)
				return
			}
			items, err := h.svc.CreateMany(ctx, inputs)
			if err != nil {
				responses.WriteError(ctx, h.logg, w, err)
				return
			}
			responses.WriteMutation(w, http.StatusCreated, items, fmt.Sprintf("%d %s(s) created successfully", len(items), h.svc.Name()))
			return
		}

		var in I
		if err := validators.DecodeBody(r, &in); err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		item, err := h.svc.Create(ctx, in)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteMutation(w, http.StatusCreated, *item, h.svc.Name()+" created successfully")
	}
}

func (h *Resource[E, I]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.tag(r, "update")
		var in I
		if err := validators.DecodeBody(r, &in); err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}

		var id int64
		if h.contract.Update.IDInBody {
			if carrier, ok := any(in).(bodyID); ok {
				id = carrier.BodyID()
			}
			if id <= 0 {
				responses.WriteError(ctx, h.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing body id").WithMessages("id is required"))
				return
			}
		} else {
			pathID, err := validators.PathID(r, "id")
			if err != nil {
				responses.WriteError(ctx, h.logg, w, err)
				return
			}
			id = pathID
		}

		item, err := h.svc.Update(ctx, id, in)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteMutation(w, http.StatusOK, *item, h.svc.Name()+" updated successfully")
	}
}

// DeleteMany reads ids from the contract's multipart field or, for raw-array
// contracts, from a JSON array body.
func (h *Resource[E, I]) DeleteMany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.tag(r, "deleteMany")
		field := h.contract.Delete.Field
		if field == "" {
			field = "ids"
		}
		ids, err := validators.DecodeIDs(r, field)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		deleted, err := h.svc.DeleteMany(ctx, ids)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteMutation(w, http.StatusOK, deleted, fmt.Sprintf("%d %s(s) deleted successfully", deleted, h.svc.Name()))
	}
}
