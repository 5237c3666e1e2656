package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler converts errors pushed onto the gin context into the JSON
// error envelope. Typed application errors carry their own status code;
// everything else is a 500 with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := "internal server error"

		if sc, ok := err.(interface{ StatusCode() int }); ok {
			status = sc.StatusCode()
			message = err.Error()
		}

		if status >= 500 {
			log.Error().Err(err).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString("request_id")).
				Msg("request failed")
		}

		c.JSON(status, gin.H{
			"status":  "error",
			"message": message,
		})
	}
}
