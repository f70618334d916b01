package utils

import "github.com/gin-gonic/gin"

// envelope is the uniform response shape: {"success":true,"data":...} on
// success and {"success":false,"error":"..."} on failure.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK writes a success response with the given status code.
func OK(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, envelope{Success: true, Data: data})
}

// Fail writes an error response with the given status code and message.
func Fail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, envelope{Success: false, Error: message})
}
