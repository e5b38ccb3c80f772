package handler

import "github.com/Morfeas98/GameCollectionApp/internal/catalog"

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// PaginatedResponse defines the structure for a paginated list of any type.
type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResponse wraps data with the metadata of the catalog page it
// was built from.
func NewPaginatedResponse[T any](data []T, page *catalog.Page) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data: data,
		Meta: PaginationMeta{
			TotalItems:  page.TotalCount,
			TotalPages:  page.TotalPages,
			CurrentPage: page.Page,
			PageSize:    page.PageSize,
		},
	}
}
