package services

import "showscheduler/internal/domain"

// DefaultPageSize is the listing page size used when the caller gives none.
const DefaultPageSize = 6

func normalizePage(p domain.PaginationParams) domain.PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}
