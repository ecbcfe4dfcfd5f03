package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/initio-ai/initio/store"
)

// EventService provides calendar event APIs for ordinary user events.
// Goal-step events are created by the schedule committer, not here.
type EventService struct {
	Store *store.Store
}

type eventResponse struct {
	ID              int32   `json:"id"`
	UID             string  `json:"uid"`
	UserID          string  `json:"userId"`
	Title           string  `json:"title"`
	Date            string  `json:"date"`
	Time            *string `json:"time,omitempty"`
	DurationMinutes int32   `json:"durationMinutes"`
	Kind            string  `json:"kind"`
	LinkedStepID    *int32  `json:"linkedStepId,omitempty"`
	LinkedGoalID    *int32  `json:"linkedGoalId,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

func eventFromStore(event *store.Event) *eventResponse {
	return &eventResponse{
		ID:              event.ID,
		UID:             event.UID,
		UserID:          event.UserID,
		Title:           event.Title,
		Date:            event.Date,
		Time:            event.Time,
		DurationMinutes: event.DurationMinutes,
		Kind:            string(event.Kind),
		LinkedStepID:    event.LinkedStepID,
		LinkedGoalID:    event.LinkedGoalID,
		Notes:           event.Notes,
	}
}

func (s *EventService) ListEvents(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return badRequest(c, "userId is required")
	}

	find := &store.FindEvent{UserID: &userID}
	if start := c.QueryParam("start"); start != "" {
		if _, err := time.Parse("2006-01-02", start); err != nil {
			return badRequest(c, "start must be YYYY-MM-DD")
		}
		find.StartDate = &start
	}
	if end := c.QueryParam("end"); end != "" {
		if _, err := time.Parse("2006-01-02", end); err != nil {
			return badRequest(c, "end must be YYYY-MM-DD")
		}
		find.EndDate = &end
	}

	events, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		slog.Error("failed to list events", "error", err)
		return internalError(c)
	}

	list := make([]*eventResponse, 0, len(events))
	for _, event := range events {
		list = append(list, eventFromStore(event))
	}
	return c.JSON(http.StatusOK, list)
}

type createEventRequest struct {
	UserID          string  `json:"userId"`
	Title           string  `json:"title"`
	Date            string  `json:"date"`
	Time            *string `json:"time,omitempty"`
	DurationMinutes int32   `json:"durationMinutes,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

func (s *EventService) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "userId and title are required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return badRequest(c, "time must be HH:MM")
		}
	}

	event, err := s.Store.CreateEvent(c.Request().Context(), &store.Event{
		UID:             shortuuid.New(),
		UserID:          req.UserID,
		Title:           strings.TrimSpace(req.Title),
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Kind:            store.EventKindUser,
		Notes:           req.Notes,
	})
	if err != nil {
		slog.Error("failed to create event", "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, eventFromStore(event))
}

type updateEventRequest struct {
	Title           *string `json:"title,omitempty"`
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	DurationMinutes *int32  `json:"durationMinutes,omitempty"`
}

func (s *EventService) UpdateEvent(c echo.Context) error {
	eventID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid event id")
	}
	var req updateEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return badRequest(c, "time must be HH:MM")
		}
	}

	now := time.Now().Unix()
	event, err := s.Store.UpdateEvent(c.Request().Context(), &store.UpdateEvent{
		ID:              eventID,
		Title:           req.Title,
		Date:            req.Date,
		Time:            req.Time,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		UpdatedTs:       &now,
	})
	if err != nil {
		slog.Error("failed to update event", "eventID", eventID, "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, eventFromStore(event))
}

func (s *EventService) DeleteEvent(c echo.Context) error {
	eventID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid event id")
	}
	userID := c.QueryParam("userId")
	if userID == "" {
		return badRequest(c, "userId is required")
	}

	if err := s.Store.DeleteEvent(c.Request().Context(), &store.DeleteEvent{ID: eventID, UserID: userID}); err != nil {
		slog.Error("failed to delete event", "eventID", eventID, "error", err)
		return notFound(c, "event not found")
	}
	return c.NoContent(http.StatusNoContent)
}
