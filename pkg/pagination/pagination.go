package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the page size used when a list request omits one.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows a single list request can return.
	MaxPageSize = 100
)

// Query parameter names expected by the shop API. They are case-sensitive.
const (
	ParamPageNumber     = "PageNumber"
	ParamPageSize       = "PageSize"
	ParamSearch         = "Search"
	ParamSortField      = "SortField"
	ParamSortDescending = "SortDescending"
)

// Query holds list-endpoint inputs. PageNumber is 1-based.
type Query struct {
	PageNumber     int
	PageSize       int
	Search         string
	SortField      string
	SortDescending bool
}

// FromView translates a 0-based table page into the 1-based query contract.
func FromView(page, pageSize int, search, sortField string, sortDescending bool) Query {
	return Query{
		PageNumber:     page + 1,
		PageSize:       pageSize,
		Search:         search,
		SortField:      sortField,
		SortDescending: sortDescending,
	}
}

func (q Query) IsZero() bool {
	return q == Query{}
}

// Params renders the query verbatim as the key/value map sent on the wire.
// A zero Query renders no parameters.
func (q Query) Params() map[string]string {
	if q.IsZero() {
		return nil
	}
	return map[string]string{
		ParamPageNumber:     strconv.Itoa(q.PageNumber),
		ParamPageSize:       strconv.Itoa(q.PageSize),
		ParamSearch:         q.Search,
		ParamSortField:      q.SortField,
		ParamSortDescending: strconv.FormatBool(q.SortDescending),
	}
}

// ParseValues reads a Query from request values, normalizing page and size.
func ParseValues(values url.Values) Query {
	page, _ := strconv.Atoi(strings.TrimSpace(values.Get(ParamPageNumber)))
	size, _ := strconv.Atoi(strings.TrimSpace(values.Get(ParamPageSize)))
	desc, _ := strconv.ParseBool(strings.TrimSpace(values.Get(ParamSortDescending)))
	if page < 1 {
		page = 1
	}
	return Query{
		PageNumber:     page,
		PageSize:       NormalizePageSize(size),
		Search:         strings.TrimSpace(values.Get(ParamSearch)),
		SortField:      strings.TrimSpace(values.Get(ParamSortField)),
		SortDescending: desc,
	}
}

// NormalizePageSize enforces the default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Offset returns the number of rows to skip for the query's page.
func (q Query) Offset() int {
	if q.PageNumber < 1 || q.PageSize < 1 {
		return 0
	}
	return (q.PageNumber - 1) * q.PageSize
}

// MetaData is the pagination block of a list envelope.
type MetaData struct {
	PageNumber int `json:"pageNumber" validate:"gte=0"`
	PageSize   int `json:"pageSize" validate:"gte=0"`
	TotalCount int `json:"totalCount" validate:"gte=0"`
	TotalPages int `json:"totalPages" validate:"gte=0"`
}

func NewMetaData(pageNumber, pageSize, totalCount int) MetaData {
	return MetaData{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: TotalPages(totalCount, pageSize),
	}
}

// TotalPages is ceil(totalCount / pageSize), zero when pageSize is not positive.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// Consistent reports whether TotalPages agrees with TotalCount and PageSize and
// an item count fits the page.
func (m MetaData) Consistent(items int) bool {
	if m.PageSize <= 0 {
		return true
	}
	return m.TotalPages == TotalPages(m.TotalCount, m.PageSize) && items <= m.PageSize
}
