package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// ListQuery describes a filtered, paginated listing: a search term ORed
// across the entity's searchable columns plus explicit equality filters,
// always excluding soft-deleted rows.
type ListQuery struct {
	Search    string
	Filters   map[string]any
	Page      int
	PerPage   int
	OrderBy   string
	OrderDesc bool
}

// Clauses compiles a ListQuery into a WHERE clause, its arguments and an
// ORDER BY/LIMIT/OFFSET tail. searchable lists the columns the search term
// applies to; sortable maps accepted orderBy keys to column names, with
// unknown keys falling back to created_at so callers cannot inject SQL
// through ordering.
func (lq ListQuery) Clauses(searchable []string, sortable map[string]string) (string, []any, string) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any
	pos := 1

	for _, f := range sortedFilters(lq.Filters) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f.column, pos))
		args = append(args, f.value)
		pos++
	}

	if lq.Search != "" && len(searchable) > 0 {
		pattern := "%" + lq.Search + "%"
		ors := make([]string, len(searchable))
		for i, column := range searchable {
			ors[i] = fmt.Sprintf("%s ILIKE $%d", column, pos)
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		args = append(args, pattern)
		pos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	column, ok := sortable[lq.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if lq.OrderDesc {
		direction = "DESC"
	}

	page := lq.Page
	if page <= 0 {
		page = 1
	}
	perPage := lq.PerPage
	if perPage <= 0 {
		perPage = shared.DefaultPerPage
	}
	if perPage > shared.MaxPerPage {
		perPage = shared.MaxPerPage
	}
	offset := (page - 1) * perPage

	tail := fmt.Sprintf("ORDER BY %s %s LIMIT %d OFFSET %d", column, direction, perPage, offset)
	return where, args, tail
}

type filterPair struct {
	column string
	value  any
}

// sortedFilters gives the filters a deterministic order so generated SQL is
// stable across calls.
func sortedFilters(filters map[string]any) []filterPair {
	if len(filters) == 0 {
		return nil
	}
	columns := make([]string, 0, len(filters))
	for column := range filters {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	pairs := make([]filterPair, len(columns))
	for i, column := range columns {
		pairs[i] = filterPair{column: column, value: filters[column]}
	}
	return pairs
}
