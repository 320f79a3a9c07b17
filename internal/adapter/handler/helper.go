package handler

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/lifecycle"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Any("details", appErr.Details),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := common.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := common.ErrorResponse{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// NewHTTPErrorHandler renders errors returned by middleware and handlers
// with the same body as HandleError
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if stdErrors.As(err, &he) {
			if he.Code == http.StatusNotFound {
				_ = HandleError(logger, c, errors.ErrNotFound("route"))
				return
			}
			_ = c.JSON(he.Code, common.ErrorResponse{
				Code:    he.Code,
				Message: fmt.Sprint(he.Message),
			})
			return
		}

		_ = HandleError(logger, c, err)
	}
}

// toAppError maps domain errors to their HTTP rendering
func toAppError(err error, meetingID string) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	switch {
	case stdErrors.Is(err, entities.ErrMissingMeetingID):
		return errors.ErrMissingMeetingID()
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingID)
	case stdErrors.Is(err, entities.ErrMeetingInvalidState):
		e := errors.ErrMeetingInvalidState(meetingID, "")
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrTranscriptMissing):
		e := errors.ErrMeetingInvalidState(meetingID, "no transcript")
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrAgentNotFound):
		e := errors.ErrAgentNotFound("")
		e.Raw = err
		return e.WithDetail("meeting_id", meetingID)
	case stdErrors.Is(err, lifecycle.ErrMalformedEvent):
		e := errors.ErrInvalidPayload()
		e.Raw = err
		return e
	case stdErrors.Is(err, lifecycle.ErrEnqueueFailed):
		return errors.ErrQueueFailed("publish", err)
	}
	return errors.ErrInternal(err)
}
