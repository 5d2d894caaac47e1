package gateway

import (
	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

// cursorFrom decodes the ?page= query parameter into a catalog.Cursor,
// falling back to the default first-page cursor on an empty or
// malformed token: a bad cursor means "start over," not a 400.
func cursorFrom(c *gin.Context) catalog.Cursor {
	return catalog.DecodeCursor(c.Query("page"))
}

// pageResponse bundles a page of items with its next/previous cursors
// into the `{page, paginators}` shape every list endpoint returns.
func pageResponse[T any](items []T, cur catalog.Cursor, rowID func(T) string) catalog.Page[T] {
	var first, last string
	if len(items) > 0 {
		first = rowID(items[0])
		last = rowID(items[len(items)-1])
	}
	if items == nil {
		items = []T{}
	}
	return catalog.Page[T]{
		Items:      items,
		Paginators: catalog.BuildPaginators(cur, first, last),
	}
}
