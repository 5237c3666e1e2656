package handler

import "github.com/gin-gonic/gin"

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

func NewSuccessMessage(message string) Response {
	return Response{Status: "success", Message: message}
}

func NewErrorResponse(message string) Response {
	return Response{Status: "error", Message: message}
}

// fail hands the error to the error middleware, which maps typed errors
// to their status codes.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
