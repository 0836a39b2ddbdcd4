package main

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the success envelope every endpoint answers with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// APIError is the failure envelope: status and message, no data.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIError{
		StatusCode: status,
		Message:    message,
	})
}
