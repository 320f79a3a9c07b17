package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-agent/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-agent/internal/usecase/lifecycle"
)

// MeetingController exposes operator actions on meetings
type MeetingController struct {
	service lifecycle.Service
	logger  *zap.Logger
}

// NewMeetingController creates a new meeting controller
func NewMeetingController(service lifecycle.Service, logger *zap.Logger) *MeetingController {
	return &MeetingController{
		service: service,
		logger:  logger,
	}
}

// GetMeeting returns a meeting
// @Summary      Get meeting
// @Description  Returns the meeting with its lifecycle timestamps, artifact URLs and summary
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.MeetingResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /meetings/{id} [get]
func (h *MeetingController) GetMeeting(c echo.Context) error {
	meetingID := c.Param("id")

	m, err := h.service.GetMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID))
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}

// ProcessMeeting re-enqueues the transcript pipeline
// @Summary      Re-run transcript processing
// @Description  Publishes a pipeline work item for a meeting that already has a transcript. With force=true the job starts from scratch.
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true   "Meeting ID"
// @Param        request  body      meeting.ProcessMeetingRequest  false  "Processing options"
// @Success      200      {object}  meeting.ProcessMeetingResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse  "Meeting has no transcript"
// @Router       /meetings/{id}/process [post]
func (h *MeetingController) ProcessMeeting(c echo.Context) error {
	meetingID := c.Param("id")

	var req meeting.ProcessMeetingRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid request body"))
		}
	}

	item, err := h.service.EnqueueProcessing(c.Request().Context(), meetingID, req.Force)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID))
	}

	if h.logger != nil {
		subject, _ := c.Get(middleware.SubjectContextKey).(string)
		h.logger.Info("meeting.process.requested",
			zap.String("meeting_id", meetingID),
			zap.String("job_id", item.ID),
			zap.String("requested_by", subject),
			zap.Bool("force", req.Force),
		)
	}

	return HandleSuccess(h.logger, c, presenter.ToProcessMeetingResponse(item))
}

// CancelMeeting cancels a meeting that has not started
// @Summary      Cancel meeting
// @Description  Moves an upcoming meeting to cancelled
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.MeetingResponse
// @Failure      404  {object}  common.ErrorResponse
// @Failure      409  {object}  common.ErrorResponse  "Meeting is not upcoming"
// @Router       /meetings/{id}/cancel [post]
func (h *MeetingController) CancelMeeting(c echo.Context) error {
	meetingID := c.Param("id")

	m, err := h.service.Cancel(c.Request().Context(), meetingID)
	if err != nil {
		appErr := toAppError(err, meetingID)
		if m != nil {
			if e, ok := appErr.(errors.AppError); ok {
				appErr = e.WithDetail("current_state", string(m.Status))
			}
		}
		return HandleError(h.logger, c, appErr)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}
