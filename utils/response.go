package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func JSON202(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func JSON401(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func JSON403(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func JSON409(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, gin.H{"error": message})
}

func JSON500(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func JSON503(c *gin.Context, data interface{}) {
	c.JSON(http.StatusServiceUnavailable, data)
}

// JSONError writes err with the status matching its code.
func JSONError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	switch appErr.Code {
	case CodeInvalidInput:
		JSON400(c, appErr.Error())
	case CodeUnauthorized:
		JSON401(c, appErr.Error())
	case CodeForbidden:
		JSON403(c, appErr.Error())
	case CodeNotFound:
		JSON404(c, appErr.Error())
	case CodeConflict, CodeInUse:
		JSON409(c, appErr.Error())
	default:
		JSON500(c, appErr.Message)
	}
}
