package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrifair/service-rental/pkg/domain"
)

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps a domain error code to its HTTP status. Untyped errors
// become 500s with a generic message so internals never leak.
func Error(c *gin.Context, err error) {
	switch domain.CodeOf(err) {
	case domain.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.CodeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case domain.CodeForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.CodeInvalidState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.CodeConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
