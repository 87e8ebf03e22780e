// api/middleware/cors.go
package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows cross-origin reads of the JSON endpoints. The
// dashboard is read-only, so only GET needs to be allowed; set
// ALLOWED_ORIGIN to restrict who may embed the data.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := "*"
		if o := os.Getenv("ALLOWED_ORIGIN"); o != "" {
			origin = o
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
