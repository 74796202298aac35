package engine

// PaginationInfo is the pagination metadata attached to the current page.
type PaginationInfo struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	PageSize    int   `json:"page_size"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// pageCount returns ceil(total/pageSize), never less than 1.
func pageCount(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// clampPage serves the last valid page when the requested page is out of
// range, e.g. after the final item of the last page was deleted elsewhere.
func clampPage(requested, totalPages int) int {
	if requested > totalPages {
		requested = totalPages
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// paginate derives the full metadata for a served page.
func paginate(page int, total int64, pageSize int) PaginationInfo {
	pages := pageCount(total, pageSize)
	return PaginationInfo{
		CurrentPage: page,
		TotalPages:  pages,
		TotalCount:  total,
		PageSize:    pageSize,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
