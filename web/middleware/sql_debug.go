package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/database"
)

const sqlMarkKey = "sqlMark"

// SQLDebugMiddleware remembers where the query log stood when the request
// arrived so handlers can show the statements the request ran, and reports
// their count in the X-SQL-Queries header
func SQLDebugMiddleware(queries *database.QueryLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mark := queries.LastID()
		c.Locals(sqlMarkKey, mark)

		err := c.Next()

		c.Set("X-SQL-Queries", strconv.Itoa(queries.LastID()-mark))
		return err
	}
}

// RequestQueries returns the statements run so far by this request
func RequestQueries(c *fiber.Ctx, queries *database.QueryLogger) []database.QueryLog {
	mark, ok := c.Locals(sqlMarkKey).(int)
	if !ok || queries == nil {
		return nil
	}
	return queries.Since(mark)
}
