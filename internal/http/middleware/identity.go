package middleware

import "github.com/gofiber/fiber/v2"

const (
	// UserIDHeader carries the authenticated user id set by the upstream
	// gateway. Token validation itself happens outside this service.
	UserIDHeader = "X-User-ID"
	// AdminHeader marks the caller as an administrator.
	AdminHeader = "X-Admin"

	// UserIDLocalKey is the context key holding the caller's user id.
	UserIDLocalKey = "user_id"
	// IsAdminLocalKey is the context key holding the caller's admin flag.
	IsAdminLocalKey = "is_admin"
)

// Identity extracts the caller identity forwarded by the gateway and stores
// it in context locals. An absent user id means an anonymous caller; some
// flows (KYC continuation by session token) allow that.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(UserIDLocalKey, c.Get(UserIDHeader))
		c.Locals(IsAdminLocalKey, c.Get(AdminHeader) == "true")
		return c.Next()
	}
}
