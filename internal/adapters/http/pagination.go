package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// Paginate slices items by the offset and limit query parameters and sets
// the Link header. Out of range values fall back to the defaults.
func Paginate[T any](c *fiber.Ctx, items []T) ([]T, Pagination) {
	p := Pagination{
		Offset: max(c.QueryInt("offset", 0), 0),
		Limit:  c.QueryInt("limit", defaultPageLimit),
		Total:  len(items),
	}
	if p.Limit <= 0 || p.Limit > maxPageLimit {
		p.Limit = defaultPageLimit
	}

	page := []T{}
	if p.Offset < p.Total {
		page = items[p.Offset:min(p.Offset+p.Limit, p.Total)]
	}

	SetLinkHeaders(c, p)
	return page, p
}

// SetLinkHeaders adds RFC 8288 first/prev/next/last links for the current
// request path.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
