package store

import (
	"context"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// ResourceAPI is the contract surface a Slice drives.
type ResourceAPI[E any, I any] interface {
	List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[E], error)
	Get(ctx context.Context, id int64) (*types.SingleEnvelope[E], error)
	Create(ctx context.Context, input I) (*types.MutationEnvelope[E], error)
	Update(ctx context.Context, id int64, input I) (*types.MutationEnvelope[E], error)
	DeleteMany(ctx context.Context, ids []int64) (*types.MutationEnvelope[int64], error)
}

// State is the per-resource partition of application state. Error is empty
// when no failure is recorded; RowsEffected is nil until a bulk delete succeeds.
type State[E any] struct {
	Items        []E
	Current      *E
	MetaData     pagination.MetaData
	Message      string
	Error        string
	Loading      bool
	RowsEffected *int64
}

func cloneState[E any](s State[E]) State[E] {
	out := s
	if s.Items != nil {
		out.Items = append(make([]E, 0, len(s.Items)), s.Items...)
	}
	if s.Current != nil {
		current := *s.Current
		out.Current = &current
	}
	if s.RowsEffected != nil {
		rows := *s.RowsEffected
		out.RowsEffected = &rows
	}
	return out
}

// Slice holds one resource's state and the operations that write it.
//
// Mutations (Create, Update, DeleteMany) never touch Items: callers refresh the
// list with ListAll afterwards. Concurrent calls are not deduplicated and the
// last one to resolve wins.
type Slice[E any, I any] struct {
	name string
	api  ResourceAPI[E, I]
	logg *logger.Logger
	cell *cell[State[E]]
}

func NewSlice[E any, I any](name string, api ResourceAPI[E, I], logg *logger.Logger) *Slice[E, I] {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Slice[E, I]{
		name: name,
		api:  api,
		logg: logg,
		cell: newCell(State[E]{}, cloneState[E]),
	}
}

func (s *Slice[E, I]) Name() string {
	return s.name
}

// State returns a snapshot; mutating it does not affect the slice.
func (s *Slice[E, I]) State() State[E] {
	return s.cell.snapshot()
}

// Subscribe registers fn to receive a snapshot after every phase change and
// returns a function that removes it.
func (s *Slice[E, I]) Subscribe(fn func(State[E])) func() {
	return s.cell.subscribe(fn)
}

// ClearMessages dismisses the transient message and error.
func (s *Slice[E, I]) ClearMessages() {
	s.cell.update(func(st *State[E]) {
		st.Message = ""
		st.Error = ""
	})
}

func (s *Slice[E, I]) pending() {
	s.cell.update(func(st *State[E]) {
		st.Loading = true
		st.Error = ""
	})
}

func (s *Slice[E, I]) rejected(ctx context.Context, op string, err error) error {
	msg := pkgerrors.UserMessage(err)
	s.cell.update(func(st *State[E]) {
		st.Loading = false
		st.Error = msg
	})
	ctx = s.logg.WithFields(ctx, map[string]any{"resource": s.name, "operation": op, "error": err.Error()})
	s.logg.Warn(ctx, "store operation rejected")
	return err
}

// ListAll fetches a page and replaces Items and MetaData. On failure the
// previous Items stay in place.
func (s *Slice[E, I]) ListAll(ctx context.Context, query pagination.Query) (*types.ListEnvelope[E], error) {
	s.pending()
	out, err := s.api.List(ctx, query)
	if err != nil {
		return nil, s.rejected(ctx, "listAll", err)
	}
	s.cell.update(func(st *State[E]) {
		st.Loading = false
		st.Items = append(make([]E, 0, len(out.Items)), out.Items...)
		st.MetaData = out.MetaData
	})
	return out, nil
}

func (s *Slice[E, I]) GetOne(ctx context.Context, id int64) (E, error) {
	s.pending()
	out, err := s.api.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, s.rejected(ctx, "getOne", err)
	}
	s.cell.update(func(st *State[E]) {
		st.Loading = false
		current := out.Data
		st.Current = &current
	})
	return out.Data, nil
}

// Create sets Current to the server-echoed entity. It does not add it to Items.
func (s *Slice[E, I]) Create(ctx context.Context, input I) (E, error) {
	s.pending()
	out, err := s.api.Create(ctx, input)
	if err != nil {
		var zero E
		return zero, s.rejected(ctx, "create", err)
	}
	s.fulfilledMutation(out)
	return out.Data, nil
}

// Update sets Current to the server-echoed entity. It does not patch Items.
func (s *Slice[E, I]) Update(ctx context.Context, id int64, input I) (E, error) {
	s.pending()
	out, err := s.api.Update(ctx, id, input)
	if err != nil {
		var zero E
		return zero, s.rejected(ctx, "update", err)
	}
	s.fulfilledMutation(out)
	return out.Data, nil
}

func (s *Slice[E, I]) fulfilledMutation(out *types.MutationEnvelope[E]) {
	s.cell.update(func(st *State[E]) {
		st.Loading = false
		current := out.Data
		st.Current = &current
		st.Message = out.Message
	})
}

// DeleteMany records the reported affected count in RowsEffected. Items are
// left as they were until the next ListAll.
func (s *Slice[E, I]) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	s.pending()
	out, err := s.api.DeleteMany(ctx, ids)
	if err != nil {
		return 0, s.rejected(ctx, "deleteMany", err)
	}
	s.cell.update(func(st *State[E]) {
		st.Loading = false
		rows := out.Data
		st.RowsEffected = &rows
		st.Message = out.Message
	})
	return out.Data, nil
}
