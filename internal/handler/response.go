package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the response shape shared by every endpoint: the HTTP
// status is repeated in the body, followed by an optional message and
// payload.  Error responses never carry internal detail, only the
// short human-readable msg.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, envelope{Code: code, Msg: msg, Data: data})
}

func ok(c echo.Context, data any) error {
	return respond(c, http.StatusOK, "", data)
}

func created(c echo.Context, data any) error {
	return respond(c, http.StatusCreated, "", data)
}

func fail(c echo.Context, code int, msg string) error {
	return respond(c, code, msg, nil)
}
