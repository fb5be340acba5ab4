package resources

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// Doer is the transport surface the resource APIs need.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

type attachmentCarrier interface {
	Attachment() *transport.File
}

type idAssigner interface {
	SetID(id int64)
}

// API executes a Contract for entity type E with writable input type I.
type API[E any, I any] struct {
	client   Doer
	contract Contract
}

func NewAPI[E any, I any](client Doer, contract Contract) *API[E, I] {
	return &API[E, I]{client: client, contract: contract}
}

func (a *API[E, I]) Contract() Contract {
	return a.contract
}

func (a *API[E, I]) name(op string) string {
	return a.contract.Resource + "." + op
}

// List fetches one page. A zero query sends no parameters.
func (a *API[E, I]) List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[E], error) {
	var out types.ListEnvelope[E]
	err := a.call(ctx, "list", transport.Request{
		Method: a.contract.List.Method,
		Path:   a.contract.List.Path,
		Params: query.Params(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.MetaData.Consistent(len(out.Items)) {
		return nil, pkgerrors.New(pkgerrors.CodeDecode, "inconsistent pagination metadata").
			WithDetails(out.MetaData)
	}
	return &out, nil
}

func (a *API[E, I]) Get(ctx context.Context, id int64) (*types.SingleEnvelope[E], error) {
	var out types.SingleEnvelope[E]
	err := a.call(ctx, "get", transport.Request{
		Method: a.contract.Get.Method,
		Path:   a.contract.Get.Resolve(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts one input and returns the server-echoed entity.
func (a *API[E, I]) Create(ctx context.Context, input I) (*types.MutationEnvelope[E], error) {
	ep := a.contract.Create
	if ep.ArrayBody {
		many, err := a.CreateMany(ctx, []I{input})
		if err != nil {
			return nil, err
		}
		if len(many.Data) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeDecode, "create returned no entity")
		}
		return &types.MutationEnvelope[E]{Data: many.Data[0], Message: many.Message}, nil
	}

	var out types.MutationEnvelope[E]
	err := a.call(ctx, "create", transport.Request{
		Method:   ep.Method,
		Path:     ep.Path,
		Body:     input,
		Encoding: ep.Encoding,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMany is only supported by contracts whose create endpoint takes an array body.
func (a *API[E, I]) CreateMany(ctx context.Context, inputs []I) (*types.MutationEnvelope[[]E], error) {
	ep := a.contract.Create
	if !ep.ArrayBody {
		return nil, fmt.Errorf("%s does not accept bulk create", a.contract.Resource)
	}
	var out types.MutationEnvelope[[]E]
	err := a.call(ctx, "create", transport.Request{
		Method:   ep.Method,
		Path:     ep.Path,
		Body:     inputs,
		Encoding: ep.Encoding,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the writable fields of id. Inputs carrying an attachment use
// the contract's UpdateWithFile endpoint when it has one.
func (a *API[E, I]) Update(ctx context.Context, id int64, input I) (*types.MutationEnvelope[E], error) {
	ep := a.contract.Update
	if carrier, ok := any(input).(attachmentCarrier); ok && carrier.Attachment() != nil && !a.contract.UpdateWithFile.IsZero() {
		ep = a.contract.UpdateWithFile
	}
	if ep.IDInBody {
		if assigner, ok := any(&input).(idAssigner); ok {
			assigner.SetID(id)
		}
	}

	var out types.MutationEnvelope[E]
	err := a.call(ctx, "update", transport.Request{
		Method:   ep.Method,
		Path:     ep.Resolve(id),
		Body:     input,
		Encoding: ep.Encoding,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMany removes ids in one request; Data is the affected row count.
func (a *API[E, I]) DeleteMany(ctx context.Context, ids []int64) (*types.MutationEnvelope[int64], error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no ids selected").WithMessages("Select at least one row to delete")
	}
	del := a.contract.Delete
	var out types.MutationEnvelope[int64]
	err := a.call(ctx, "deleteMany", transport.Request{
		Method:   del.Method,
		Path:     del.Path,
		Body:     del.Body(ids),
		Encoding: del.Encoding,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API[E, I]) call(ctx context.Context, op string, req transport.Request, dest any) error {
	req.Name = a.name(op)
	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return err
	}
	return transport.DecodeJSON(resp, dest)
}
