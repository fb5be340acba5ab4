// Package crud implements the list/get/create/update/bulk-delete operations
// every shop resource exposes, parameterized by per-resource hooks.
package crud

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/pkg/db"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"gorm.io/gorm"
)

// Hooks adapt the generic service to one resource. M is the gorm model, E the
// API entity and I the input type.
type Hooks[M, E, I any] struct {
	// ToEntity maps a loaded model (with preloads) to the API entity.
	ToEntity func(M) E
	// Apply copies input onto the model. The model has ID zero on create.
	Apply func(ctx context.Context, tx *gorm.DB, in I, m *M) error
	// AfterSave runs in the same transaction once the row has an ID.
	AfterSave func(ctx context.Context, tx *gorm.DB, in I, m *M) error
	// BeforeDelete runs in the delete transaction, e.g. to remove child rows.
	BeforeDelete func(ctx context.Context, tx *gorm.DB, ids []int64) error
	// Enrich fills read-only computed fields on entities about to be returned.
	Enrich func(ctx context.Context, db *gorm.DB, items []E) error
	// ID extracts the primary key of a model.
	ID func(M) int64
}

// Service executes the generic operations for one resource.
type Service[M, E, I any] struct {
	name  string
	db    *gorm.DB
	spec  repo.ListSpec
	hooks Hooks[M, E, I]
}

// New builds a resource service. name is used in messages ("Category not found").
func New[M, E, I any](database *gorm.DB, name string, spec repo.ListSpec, hooks Hooks[M, E, I]) (*Service[M, E, I], error) {
	if database == nil {
		return nil, fmt.Errorf("%s: database is required", name)
	}
	if hooks.ToEntity == nil || hooks.Apply == nil || hooks.ID == nil {
		return nil, fmt.Errorf("%s: ToEntity, Apply and ID hooks are required", name)
	}
	return &Service[M, E, I]{name: name, db: database, spec: spec, hooks: hooks}, nil
}

func (s *Service[M, E, I]) Name() string { return s.name }

func (s *Service[M, E, I]) table(tx *gorm.DB) *repo.Table[M] {
	if tx == nil {
		tx = s.db
	}
	return repo.NewTable[M](tx, s.spec)
}

func (s *Service[M, E, I]) notFound() string {
	return s.name + " not found"
}

func (s *Service[M, E, I]) entities(ctx context.Context, rows []M) ([]E, error) {
	items := make([]E, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.hooks.ToEntity(row))
	}
	if s.hooks.Enrich != nil && len(items) > 0 {
		if err := s.hooks.Enrich(ctx, s.db.WithContext(ctx), items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enrich "+s.name)
		}
	}
	return items, nil
}

// List returns one page of entities and the pagination metadata.
func (s *Service[M, E, I]) List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[E], error) {
	if query.PageNumber < 1 {
		query.PageNumber = 1
	}
	query.PageSize = pagination.NormalizePageSize(query.PageSize)

	rows, total, err := s.table(nil).List(ctx, query)
	if err != nil {
		return nil, db.Translate(err, s.notFound())
	}
	items, err := s.entities(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &types.ListEnvelope[E]{
		Items:    items,
		MetaData: pagination.NewMetaData(query.PageNumber, query.PageSize, int(total)),
	}, nil
}

// Get loads one entity; a missing row is NOT_FOUND.
func (s *Service[M, E, I]) Get(ctx context.Context, id int64) (*E, error) {
	row, err := s.table(nil).Find(ctx, id)
	if err != nil {
		return nil, db.Translate(err, s.notFound())
	}
	items, err := s.entities(ctx, []M{*row})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create inserts one entity.
func (s *Service[M, E, I]) Create(ctx context.Context, in I) (*E, error) {
	created, err := s.CreateMany(ctx, []I{in})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// CreateMany inserts every input in one transaction.
func (s *Service[M, E, I]) CreateMany(ctx context.Context, inputs []I) ([]E, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty body").WithMessages("At least one " + s.name + " is required")
	}
	ids := make([]int64, 0, len(inputs))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table := s.table(tx)
		for _, in := range inputs {
			var row M
			if err := s.hooks.Apply(ctx, tx, in, &row); err != nil {
				return err
			}
			if err := table.Create(ctx, &row); err != nil {
				return err
			}
			if s.hooks.AfterSave != nil {
				if err := s.hooks.AfterSave(ctx, tx, in, &row); err != nil {
					return err
				}
			}
			ids = append(ids, s.hooks.ID(row))
		}
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, s.notFound())
	}
	return s.reload(ctx, ids)
}

// Update overwrites the writable fields of an existing entity.
func (s *Service[M, E, I]) Update(ctx context.Context, id int64, in I) (*E, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table := s.table(tx)
		row, err := table.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := s.hooks.Apply(ctx, tx, in, row); err != nil {
			return err
		}
		if err := table.Save(ctx, row); err != nil {
			return err
		}
		if s.hooks.AfterSave != nil {
			return s.hooks.AfterSave(ctx, tx, in, row)
		}
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, s.notFound())
	}
	return s.Get(ctx, id)
}

// DeleteMany removes the given ids and reports the affected row count. Unknown
// ids are ignored.
func (s *Service[M, E, I]) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no ids").WithMessages("At least one id is required")
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.hooks.BeforeDelete != nil {
			if err := s.hooks.BeforeDelete(ctx, tx, ids); err != nil {
				return err
			}
		}
		n, err := s.table(tx).DeleteIDs(ctx, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, db.Translate(err, s.notFound())
	}
	return deleted, nil
}

func (s *Service[M, E, I]) reload(ctx context.Context, ids []int64) ([]E, error) {
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, nil
}
