package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/almajirisurvey/backend/core"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       interface{}      `json:"data,omitempty"`
	Errors     interface{}      `json:"errors,omitempty"`
	Pagination *core.Pagination `json:"pagination,omitempty"`
}

func respond(ctx echo.Context, code int, message string, data interface{}) error {
	return ctx.JSON(code, Response{Success: true, Message: message, Data: data})
}

func respondPage(ctx echo.Context, message string, data interface{}, page core.Page, total int64) error {
	p := core.NewPagination(page, total)
	return ctx.JSON(200, Response{Success: true, Message: message, Data: data, Pagination: &p})
}
