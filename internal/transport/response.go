package transport

import (
	"errors"
	"net/http"

	"ordermgmt-be/internal/catalog"
	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/order"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the common head of every JSON body. Code mirrors the HTTP
// status; ErrorCode carries the stable domain code on failures.
type envelope struct {
	Code      int    `json:"code"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

func success(message string) envelope {
	return envelope{Code: http.StatusOK, Status: statusSuccess, Message: message}
}

// httpStatus maps a domain error code onto the HTTP status it is served with.
func httpStatus(code order.Code) int {
	switch code {
	case order.CodeValidation, order.CodeInvalidState:
		return http.StatusBadRequest
	case order.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an error envelope. Causes are logged, never sent.
func writeError(c echo.Context, err error) error {
	log := logger.FromCtx(c.Request().Context())

	if errors.Is(err, catalog.ErrQuery) {
		log.Error("catalog query failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, envelope{
			Code:    http.StatusUnprocessableEntity,
			Status:  statusError,
			Message: "Database query issue",
		})
	}

	code := order.CodeOf(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("error_code", int(code)), zap.Error(err))
	} else {
		log.Warn("request rejected", zap.Int("error_code", int(code)), zap.String("reason", order.MessageOf(err)))
	}

	return c.JSON(status, envelope{
		Code:      status,
		Status:    statusError,
		Message:   order.MessageOf(err),
		ErrorCode: int(code),
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, envelope{
		Code:      http.StatusBadRequest,
		Status:    statusError,
		Message:   message,
		ErrorCode: int(order.CodeValidation),
	})
}
