package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends the success envelope the front end consumes:
// a human-readable message plus the payload under "data".
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

// JSONError sends the error envelope. Clients read the "error" field of
// non-2xx responses as the failure message.
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"message": message,
		"error":   err.Error(),
	})
}
