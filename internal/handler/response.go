package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
	"github.com/shinyyama/broadcast-feed/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ErrorID string `json:"errorId,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// internalError logs err under a fresh error id and answers with that id
// only. Storage details never reach the client.
func internalError(c echo.Context, err error, msg string) error {
	errorID := uuid.NewString()
	log.Error().Err(err).
		Str("error_id", errorID).
		Str("rid", logctx.RID(c.Request().Context())).
		Str("path", c.Path()).
		Msg(msg)
	resp := NewErrorResponse("internal_error", "Internal Server Error")
	resp.Error.ErrorID = errorID
	return c.JSON(http.StatusInternalServerError, resp)
}

// serviceError maps service and storage failures onto the error envelope.
func serviceError(c echo.Context, err error, notFoundMsg, logMsg string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", notFoundMsg))
	default:
		return internalError(c, err, logMsg)
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", msg))
}
