package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
)

const accountTotalCacheKey = "auth:stats:accounts_total"
const accountTotalCacheTTL = 1 * time.Minute

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// HandleAdminListAccounts returns a paginated account listing. The route is
// only installed when admin credentials are configured.
func HandleAdminListAccounts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	total, err := accountTotal()
	if err != nil {
		return internalError(c)
	}

	items, err := accounts.List((page-1)*pageSize, pageSize)
	if err != nil {
		return internalError(c)
	}

	out := make([]fiber.Map, 0, len(items))
	for i := range items {
		a := &items[i]
		out = append(out, fiber.Map{
			"id":         a.UUID,
			"username":   a.Name,
			"email":      a.Email,
			"origin":     a.Origin,
			"verified":   a.Verified,
			"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"accounts":  out,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// accountTotal serves the account count from the cache when fresh; the key is
// invalidated on registration and deletion.
func accountTotal() (int64, error) {
	if v, err := cache.GetInt(accountTotalCacheKey); err == nil {
		return int64(v), nil
	}
	total, err := accounts.Count()
	if err != nil {
		return 0, err
	}
	_ = cache.Set(accountTotalCacheKey, total, accountTotalCacheTTL)
	return total, nil
}
