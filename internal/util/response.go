package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the body of a successful JSON reply.
type Response map[string]interface{}

// Messages shared by every handler; they never reveal which check failed.
const (
	MsgUnauthorized   = "Unauthorized"
	MsgForbidden      = "Forbidden"
	MsgInvalidBody    = "Invalid request body."
	MsgInternal       = "Internal server error."
	MsgPasswordChange = "Password change required"
)

// Success writes data with status 200.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, data)
}

// Created writes data with status 201.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, data)
}

// Error writes the single-field error body and aborts the chain.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"error": msg})
}
