package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/shopadmin/internal/resources"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryAPI struct {
	listFn   func(pagination.Query) (*types.ListEnvelope[resources.Category], error)
	getFn    func(int64) (*types.SingleEnvelope[resources.Category], error)
	createFn func(resources.CategoryInput) (*types.MutationEnvelope[resources.Category], error)
	deleteFn func([]int64) (*types.MutationEnvelope[int64], error)
}

func (f *fakeCategoryAPI) List(_ context.Context, q pagination.Query) (*types.ListEnvelope[resources.Category], error) {
	return f.listFn(q)
}

func (f *fakeCategoryAPI) Get(_ context.Context, id int64) (*types.SingleEnvelope[resources.Category], error) {
	return f.getFn(id)
}

func (f *fakeCategoryAPI) Create(_ context.Context, in resources.CategoryInput) (*types.MutationEnvelope[resources.Category], error) {
	return f.createFn(in)
}

func (f *fakeCategoryAPI) Update(_ context.Context, id int64, in resources.CategoryInput) (*types.MutationEnvelope[resources.Category], error) {
	return &types.MutationEnvelope[resources.Category]{Data: resources.Category{ID: id, Name: in.Name}, Message: "updated"}, nil
}

func (f *fakeCategoryAPI) DeleteMany(_ context.Context, ids []int64) (*types.MutationEnvelope[int64], error) {
	return f.deleteFn(ids)
}

func page(names ...string) *types.ListEnvelope[resources.Category] {
	items := make([]resources.Category, len(names))
	for i, n := range names {
		items[i] = resources.Category{ID: int64(i + 1), Name: n}
	}
	return &types.ListEnvelope[resources.Category]{Items: items, MetaData: pagination.NewMetaData(1, 10, len(names))}
}

func backendError(messages ...string) error {
	if len(messages) == 0 {
		messages = []string{pkgerrors.GenericMessage}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "POST /Categories returned 400").WithStatus(400).WithMessages(messages...)
}

func TestListAllReplacesItemsAndKeepsThemOnFailure(t *testing.T) {
	api := &fakeCategoryAPI{listFn: func(pagination.Query) (*types.ListEnvelope[resources.Category], error) {
		return page("Dairy", "Bakery"), nil
	}}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)
	ctx := context.Background()

	_, err := s.ListAll(ctx, pagination.Query{})
	require.NoError(t, err)
	st := s.State()
	assert.Len(t, st.Items, 2)
	assert.Equal(t, 2, st.MetaData.TotalCount)
	assert.False(t, st.Loading)

	api.listFn = func(pagination.Query) (*types.ListEnvelope[resources.Category], error) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, errors.New("connection refused"), pkgerrors.GenericMessage)
	}
	_, err = s.ListAll(ctx, pagination.Query{})
	require.Error(t, err)
	st = s.State()
	assert.Len(t, st.Items, 2, "failed list keeps previous rows")
	assert.Equal(t, pkgerrors.GenericMessage, st.Error)
	assert.False(t, st.Loading)
}

func TestPhasesAreBroadcast(t *testing.T) {
	api := &fakeCategoryAPI{getFn: func(id int64) (*types.SingleEnvelope[resources.Category], error) {
		return &types.SingleEnvelope[resources.Category]{Data: resources.Category{ID: id, Name: "Dairy"}}, nil
	}}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)

	var phases []State[resources.Category]
	unsubscribe := s.Subscribe(func(st State[resources.Category]) { phases = append(phases, st) })

	_, err := s.GetOne(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.True(t, phases[0].Loading)
	assert.Empty(t, phases[0].Error)
	assert.False(t, phases[1].Loading)
	require.NotNil(t, phases[1].Current)
	assert.Equal(t, int64(4), phases[1].Current.ID)

	unsubscribe()
	_, _ = s.GetOne(context.Background(), 5)
	assert.Len(t, phases, 2, "unsubscribed listener receives nothing")
}

func TestPendingClearsPreviousError(t *testing.T) {
	calls := 0
	api := &fakeCategoryAPI{getFn: func(id int64) (*types.SingleEnvelope[resources.Category], error) {
		calls++
		if calls == 1 {
			return nil, backendError("Category not found")
		}
		return &types.SingleEnvelope[resources.Category]{Data: resources.Category{ID: id, Name: "x"}}, nil
	}}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)

	_, err := s.GetOne(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Category not found", s.State().Error)
	assert.Nil(t, s.State().Current)

	_, err = s.GetOne(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, s.State().Error)
}

func TestMutationsDoNotTouchItems(t *testing.T) {
	api := &fakeCategoryAPI{
		listFn: func(pagination.Query) (*types.ListEnvelope[resources.Category], error) { return page("Bakery"), nil },
		createFn: func(in resources.CategoryInput) (*types.MutationEnvelope[resources.Category], error) {
			return &types.MutationEnvelope[resources.Category]{Data: resources.Category{ID: 26, Name: in.Name}, Message: "Category created"}, nil
		},
		deleteFn: func(ids []int64) (*types.MutationEnvelope[int64], error) {
			return &types.MutationEnvelope[int64]{Data: int64(len(ids)), Message: "deleted"}, nil
		},
	}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)
	ctx := context.Background()
	_, err := s.ListAll(ctx, pagination.Query{})
	require.NoError(t, err)

	created, err := s.Create(ctx, resources.CategoryInput{Name: "Dairy"})
	require.NoError(t, err)
	assert.Equal(t, int64(26), created.ID)
	st := s.State()
	assert.Equal(t, []resources.Category{{ID: 1, Name: "Bakery"}}, st.Items)
	assert.Equal(t, "Dairy", st.Current.Name)
	assert.Equal(t, "Category created", st.Message)

	_, err = s.Update(ctx, 1, resources.CategoryInput{Name: "Bread"})
	require.NoError(t, err)
	assert.Equal(t, "Bakery", s.State().Items[0].Name)

	rows, err := s.DeleteMany(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	st = s.State()
	require.NotNil(t, st.RowsEffected)
	assert.Equal(t, int64(1), *st.RowsEffected)
	assert.Len(t, st.Items, 1, "delete does not remove rows locally")
}

func TestFailedMutationLeavesCurrentAndRows(t *testing.T) {
	api := &fakeCategoryAPI{
		createFn: func(resources.CategoryInput) (*types.MutationEnvelope[resources.Category], error) {
			return nil, backendError("Name is required")
		},
		deleteFn: func([]int64) (*types.MutationEnvelope[int64], error) {
			return nil, backendError()
		},
	}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, resources.CategoryInput{})
	require.Error(t, err)
	st := s.State()
	assert.Nil(t, st.Current)
	assert.Equal(t, "Name is required", st.Error)

	_, err = s.DeleteMany(ctx, []int64{1})
	require.Error(t, err)
	st = s.State()
	assert.Nil(t, st.RowsEffected)
	assert.Equal(t, pkgerrors.GenericMessage, st.Error)

	s.ClearMessages()
	assert.Empty(t, s.State().Error)
}

func TestConcurrentListAllLastResolutionWins(t *testing.T) {
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	api := &fakeCategoryAPI{listFn: func(q pagination.Query) (*types.ListEnvelope[resources.Category], error) {
		if q.Search == "slow" {
			close(firstStarted)
			<-releaseFirst
			return page("slow result"), nil
		}
		return page("fast result"), nil
	}}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.ListAll(ctx, pagination.Query{Search: "slow"})
	}()
	<-firstStarted

	_, err := s.ListAll(ctx, pagination.Query{Search: "fast"})
	require.NoError(t, err)
	assert.Equal(t, "fast result", s.State().Items[0].Name)

	close(releaseFirst)
	wg.Wait()
	assert.Equal(t, "slow result", s.State().Items[0].Name, "the call that resolves last overwrites state")
}

func TestStateIsASnapshot(t *testing.T) {
	api := &fakeCategoryAPI{listFn: func(pagination.Query) (*types.ListEnvelope[resources.Category], error) {
		return page("Dairy"), nil
	}}
	s := NewSlice[resources.Category, resources.CategoryInput]("Category", api, nil)
	_, err := s.ListAll(context.Background(), pagination.Query{})
	require.NoError(t, err)

	st := s.State()
	st.Items[0].Name = "mutated"
	assert.Equal(t, "Dairy", s.State().Items[0].Name)
}
