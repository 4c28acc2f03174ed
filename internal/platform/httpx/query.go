package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// ListParams carries the pagination and search parameters common to every
// listing endpoint.
type ListParams struct {
	Search    string
	Page      int
	PerPage   int
	OrderBy   string
	OrderDesc bool
}

// ParseListParams reads search/page/perPage/orderBy from the query string.
// Invalid numbers fall back to defaults instead of failing the request.
func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	params := ListParams{
		Search:  strings.TrimSpace(q.Get("search")),
		Page:    1,
		OrderBy: q.Get("orderBy"),
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("perPage")); err == nil && v > 0 {
		params.PerPage = v
	}
	if strings.EqualFold(q.Get("order"), "desc") {
		params.OrderDesc = true
	}
	return params
}

// ParseVersion reads the version query parameter for delete endpoints. The
// returned pointer is nil when the parameter is absent or malformed so the
// service can reject it as a validation failure.
func ParseVersion(r *http.Request) *int {
	raw := r.URL.Query().Get("version")
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
