package services

// Pagination describes one page of an offset-paged result set.
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int64 `json:"total_pages"`
	TotalResults int64 `json:"total_results"`
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// clampPage normalizes page and limit to their documented bounds:
// page >= 1, limit in 1..100 defaulting to 10.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}
}
