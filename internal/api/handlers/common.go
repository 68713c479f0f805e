package handlers

import (
	"errors"

	"bidtrack/internal/utils"
	"github.com/gin-gonic/gin"
)

// writeError maps an AppError to the wire shape {"error": message}. Internal
// errors keep their detail out of the response; the full chain is attached to
// the gin context so the request logger picks it up.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := utils.HTTPStatus(err)

	msg := "Server error"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Code != utils.CodeInternal && ae.Message != "" {
		msg = ae.Message
	}

	c.JSON(status, gin.H{"error": msg})
}
