package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware counts API requests by route template and status code
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.RecordRequest(route, strconv.Itoa(ctx.Writer.Status()))
	}
}
