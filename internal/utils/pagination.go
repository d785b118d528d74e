package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
	defaultSort      = "-createdAt"
	// maxPage keeps (page-1)*limit inside int for every accepted limit.
	maxPage = math.MaxInt / maxPageLimit
)

// PaginationDefaults overrides the fallbacks used by ParsePagination.
type PaginationDefaults struct {
	Limit int
	Sort  string
}

// PageQuery is the normalised form of list query parameters.
type PageQuery struct {
	Page  int
	Limit int
	Skip  int
	Sort  string
}

// Pagination is the metadata returned alongside list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ParsePagination normalises raw page/limit/sort values. Invalid input falls back to defaults.
func ParsePagination(query map[string]string, defaults PaginationDefaults) PageQuery {
	fallbackLimit := defaults.Limit
	if fallbackLimit <= 0 {
		fallbackLimit = defaultPageLimit
	}
	if fallbackLimit > maxPageLimit {
		fallbackLimit = maxPageLimit
	}

	page, err := strconv.Atoi(strings.TrimSpace(query["page"]))
	switch {
	case errors.Is(err, strconv.ErrRange) && page > 0:
		page = maxPage
	case err != nil || page < 1:
		page = 1
	case page > maxPage:
		page = maxPage
	}

	limit, err := strconv.Atoi(strings.TrimSpace(query["limit"]))
	switch {
	case err != nil || limit < 1:
		limit = fallbackLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	sort := strings.TrimSpace(query["sort"])
	if sort == "" {
		sort = strings.TrimSpace(defaults.Sort)
	}
	if sort == "" {
		sort = defaultSort
	}

	return PageQuery{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
		Sort:  sort,
	}
}

// BuildPagination produces response metadata. Callers are responsible for total being accurate.
func BuildPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// SortClause maps a "-field" style sort onto an allow-listed SQL order clause.
func SortClause(sort string, allowed map[string]string) string {
	sort = strings.TrimSpace(sort)
	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		sort = strings.TrimPrefix(sort, "-")
	}

	column, ok := allowed[sort]
	if !ok {
		return "created_at DESC"
	}
	return column + " " + direction
}
