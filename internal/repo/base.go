package repo

import (
	"context"
	"strings"

	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// ListSpec describes how a table is searched, sorted and preloaded.
type ListSpec struct {
	// SearchColumns are matched case-insensitively with a substring LIKE.
	SearchColumns []string
	// SortColumns maps accepted SortField values (case-insensitive) to columns.
	SortColumns map[string]string
	// DefaultSort is the column used when SortField is empty or unknown.
	DefaultSort string
	Preloads    []string
}

func (s ListSpec) sortColumn(field string) string {
	field = strings.TrimSpace(field)
	for key, column := range s.SortColumns {
		if strings.EqualFold(key, field) {
			return column
		}
	}
	if s.DefaultSort != "" {
		return s.DefaultSort
	}
	return "id"
}

// Table is a generic repository over one model keyed by an int64 "id".
type Table[M any] struct {
	Base
	spec ListSpec
}

func NewTable[M any](db *gorm.DB, spec ListSpec) *Table[M] {
	return &Table[M]{Base: NewBase(db), spec: spec}
}

// Query starts a model query with the table's preloads applied.
func (t *Table[M]) Query(ctx context.Context) *gorm.DB {
	q := t.DB(ctx).Model(new(M))
	for _, p := range t.spec.Preloads {
		q = q.Preload(p)
	}
	return q
}

// likeEscaper makes the search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (t *Table[M]) filtered(ctx context.Context, search string) *gorm.DB {
	q := t.DB(ctx).Model(new(M))
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" || len(t.spec.SearchColumns) == 0 {
		return q
	}
	pattern := "%" + likeEscaper.Replace(search) + "%"
	conds := make([]string, 0, len(t.spec.SearchColumns))
	args := make([]any, 0, len(t.spec.SearchColumns))
	for _, col := range t.spec.SearchColumns {
		conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return q.Where(strings.Join(conds, " OR "), args...)
}

// List returns one page of rows and the total number of matching rows.
func (t *Table[M]) List(ctx context.Context, query pagination.Query) ([]M, int64, error) {
	var total int64
	if err := t.filtered(ctx, query.Search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	size := pagination.NormalizePageSize(query.PageSize)
	if query.PageNumber < 1 {
		query.PageNumber = 1
	}
	query.PageSize = size

	q := t.filtered(ctx, query.Search)
	for _, p := range t.spec.Preloads {
		q = q.Preload(p)
	}
	column := t.spec.sortColumn(query.SortField)
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: query.SortDescending})
	if column != "id" {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	rows := make([]M, 0, size)
	if err := q.Offset(query.Offset()).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Find loads a row by id; a missing row yields gorm.ErrRecordNotFound.
func (t *Table[M]) Find(ctx context.Context, id int64) (*M, error) {
	var row M
	if err := t.Query(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Exists reports whether a row with id is present.
func (t *Table[M]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := t.DB(ctx).Model(new(M)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts row without touching associations.
func (t *Table[M]) Create(ctx context.Context, row *M) error {
	return t.DB(ctx).Omit(clause.Associations).Create(row).Error
}

// Save writes every column of row without touching associations.
func (t *Table[M]) Save(ctx context.Context, row *M) error {
	return t.DB(ctx).Omit(clause.Associations).Save(row).Error
}

// DeleteIDs removes the rows with the given ids and reports how many were deleted.
func (t *Table[M]) DeleteIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := t.DB(ctx).Where("id IN ?", ids).Delete(new(M))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
