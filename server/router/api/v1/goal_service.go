package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/initio-ai/initio/store"
)

// GoalService provides goal and step management APIs.
type GoalService struct {
	Store *store.Store
}

type stepPayload struct {
	Title          string   `json:"title"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
}

type createGoalRequest struct {
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	TargetDate  *string       `json:"targetDate,omitempty"`
	Steps       []stepPayload `json:"steps,omitempty"`
}

type goalResponse struct {
	ID              int32           `json:"id"`
	UID             string          `json:"uid"`
	UserID          string          `json:"userId"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status"`
	TargetDate      *string         `json:"targetDate,omitempty"`
	ProgressPercent float64         `json:"progressPercent"`
	IsScheduled     bool            `json:"isScheduled"`
	Steps           []*stepResponse `json:"steps"`
	CreatedTs       int64           `json:"createdTs"`
	UpdatedTs       int64           `json:"updatedTs"`
}

type stepResponse struct {
	ID              int32    `json:"id"`
	GoalID          int32    `json:"goalId"`
	Title           string   `json:"title"`
	Order           int32    `json:"order"`
	Status          string   `json:"status"`
	EstimatedHours  *float64 `json:"estimatedHours,omitempty"`
	PlannedDate     *string  `json:"plannedDate,omitempty"`
	PlannedTime     *string  `json:"plannedTime,omitempty"`
	DurationMinutes *int32   `json:"durationMinutes,omitempty"`
	LinkedEventID   *int32   `json:"linkedEventId,omitempty"`
}

func goalFromStore(goal *store.Goal) *goalResponse {
	resp := &goalResponse{
		ID:              goal.ID,
		UID:             goal.UID,
		UserID:          goal.UserID,
		Title:           goal.Title,
		Description:     goal.Description,
		Status:          string(goal.Status),
		TargetDate:      goal.TargetDate,
		ProgressPercent: goal.ProgressPercent,
		IsScheduled:     goal.IsScheduled,
		Steps:           []*stepResponse{},
		CreatedTs:       goal.CreatedTs,
		UpdatedTs:       goal.UpdatedTs,
	}
	for _, step := range goal.Steps {
		resp.Steps = append(resp.Steps, stepFromStore(step))
	}
	return resp
}

func stepFromStore(step *store.Step) *stepResponse {
	return &stepResponse{
		ID:              step.ID,
		GoalID:          step.GoalID,
		Title:           step.Title,
		Order:           step.Order,
		Status:          string(step.Status),
		EstimatedHours:  step.EstimatedHours,
		PlannedDate:     step.PlannedDate,
		PlannedTime:     step.PlannedTime,
		DurationMinutes: step.DurationMinutes,
		LinkedEventID:   step.LinkedEventID,
	}
}

func (s *GoalService) ListGoals(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return badRequest(c, "userId is required")
	}

	find := &store.FindGoal{UserID: &userID}
	if raw := c.QueryParam("status"); raw != "" {
		status := store.GoalStatus(raw)
		if !status.IsValid() {
			return badRequest(c, "unknown status")
		}
		find.Status = &status
	}

	goals, err := s.Store.ListGoals(c.Request().Context(), find)
	if err != nil {
		slog.Error("failed to list goals", "error", err)
		return internalError(c)
	}

	list := make([]*goalResponse, 0, len(goals))
	for _, goal := range goals {
		list = append(list, goalFromStore(goal))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *GoalService) CreateGoal(c echo.Context) error {
	var req createGoalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "userId and title are required")
	}

	ctx := c.Request().Context()
	goal, err := s.Store.CreateGoal(ctx, &store.Goal{
		UID:         shortuuid.New(),
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		slog.Error("failed to create goal", "error", err)
		return internalError(c)
	}

	for i, payload := range req.Steps {
		if strings.TrimSpace(payload.Title) == "" {
			continue
		}
		step, err := s.Store.CreateStep(ctx, &store.Step{
			GoalID:         goal.ID,
			Title:          strings.TrimSpace(payload.Title),
			Order:          int32(i + 1),
			EstimatedHours: payload.EstimatedHours,
		})
		if err != nil {
			slog.Error("failed to create step", "goalID", goal.ID, "error", err)
			return internalError(c)
		}
		goal.Steps = append(goal.Steps, step)
	}

	return c.JSON(http.StatusCreated, goalFromStore(goal))
}

func (s *GoalService) GetGoal(c echo.Context) error {
	goalID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid goal id")
	}

	goal, err := s.Store.GetGoal(c.Request().Context(), &store.FindGoal{ID: &goalID})
	if err != nil {
		slog.Error("failed to get goal", "goalID", goalID, "error", err)
		return internalError(c)
	}
	if goal == nil {
		return notFound(c, "goal not found")
	}
	return c.JSON(http.StatusOK, goalFromStore(goal))
}

type updateGoalRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	TargetDate  *string `json:"targetDate,omitempty"`
}

func (s *GoalService) UpdateGoal(c echo.Context) error {
	goalID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid goal id")
	}
	var req updateGoalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	update := &store.UpdateGoal{
		ID:          goalID,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}
	if req.Status != nil {
		status := store.GoalStatus(*req.Status)
		if !status.IsValid() {
			return badRequest(c, "unknown status")
		}
		update.Status = &status
	}

	goal, err := s.Store.UpdateGoal(c.Request().Context(), update)
	if err != nil {
		slog.Error("failed to update goal", "goalID", goalID, "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, goalFromStore(goal))
}

func (s *GoalService) DeleteGoal(c echo.Context) error {
	goalID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid goal id")
	}
	userID := c.QueryParam("userId")
	if userID == "" {
		return badRequest(c, "userId is required")
	}

	if err := s.Store.DeleteGoal(c.Request().Context(), &store.DeleteGoal{ID: goalID, UserID: userID}); err != nil {
		slog.Error("failed to delete goal", "goalID", goalID, "error", err)
		return notFound(c, "goal not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *GoalService) AddStep(c echo.Context) error {
	goalID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid goal id")
	}
	var payload stepPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(payload.Title) == "" {
		return badRequest(c, "title is required")
	}

	ctx := c.Request().Context()
	goal, err := s.Store.GetGoal(ctx, &store.FindGoal{ID: &goalID})
	if err != nil {
		slog.Error("failed to get goal", "goalID", goalID, "error", err)
		return internalError(c)
	}
	if goal == nil {
		return notFound(c, "goal not found")
	}

	step, err := s.Store.CreateStep(ctx, &store.Step{
		GoalID:         goalID,
		Title:          strings.TrimSpace(payload.Title),
		Order:          int32(len(goal.Steps) + 1),
		EstimatedHours: payload.EstimatedHours,
	})
	if err != nil {
		slog.Error("failed to create step", "goalID", goalID, "error", err)
		return internalError(c)
	}

	// A new pending step dilutes the completion percentage.
	if _, err := s.Store.RecomputeGoalProgress(ctx, goalID); err != nil {
		slog.Warn("failed to recompute goal progress", "goalID", goalID, "error", err)
	}
	return c.JSON(http.StatusCreated, stepFromStore(step))
}

type updateStepRequest struct {
	Title          *string  `json:"title,omitempty"`
	Status         *string  `json:"status,omitempty"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
}

func (s *GoalService) UpdateStep(c echo.Context) error {
	stepID, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid step id")
	}
	var req updateStepRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	update := &store.UpdateStep{
		ID:             stepID,
		Title:          req.Title,
		EstimatedHours: req.EstimatedHours,
	}
	if req.Status != nil {
		status := store.StepStatus(*req.Status)
		if !status.IsValid() {
			return badRequest(c, "unknown status")
		}
		update.Status = &status
		if status == store.StepStatusCompleted {
			now := time.Now().Unix()
			update.CompletedTs = &now
		}
	}

	ctx := c.Request().Context()
	step, err := s.Store.UpdateStep(ctx, update)
	if err != nil {
		slog.Error("failed to update step", "stepID", stepID, "error", err)
		return internalError(c)
	}

	if update.Status != nil {
		if _, err := s.Store.RecomputeGoalProgress(ctx, step.GoalID); err != nil {
			slog.Warn("failed to recompute goal progress", "goalID", step.GoalID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, stepFromStore(step))
}

func pathID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
