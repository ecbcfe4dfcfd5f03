// Package v1 exposes the JSON API: goal, step and event CRUD plus the
// scheduling dialog surface (message, callback, chat webhooks).
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/initio-ai/initio/internal/profile"
	"github.com/initio-ai/initio/plugin/chat_apps/channels"
	"github.com/initio-ai/initio/server/service/scheduling"
	"github.com/initio-ai/initio/store"
)

type APIV1Service struct {
	GoalService   *GoalService
	EventService  *EventService
	DialogService *DialogService

	Profile *profile.Profile
	Store   *store.Store
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, engine *scheduling.Engine, channelRouter *channels.ChannelRouter) *APIV1Service {
	return &APIV1Service{
		GoalService:   &GoalService{Store: store},
		EventService:  &EventService{Store: store},
		DialogService: &DialogService{Engine: engine, ChannelRouter: channelRouter},
		Profile:       profile,
		Store:         store,
	}
}

// Register mounts the API on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.GET("/goals", s.GoalService.ListGoals)
	api.POST("/goals", s.GoalService.CreateGoal)
	api.GET("/goals/:id", s.GoalService.GetGoal)
	api.PATCH("/goals/:id", s.GoalService.UpdateGoal)
	api.DELETE("/goals/:id", s.GoalService.DeleteGoal)
	api.POST("/goals/:id/steps", s.GoalService.AddStep)
	api.PATCH("/steps/:id", s.GoalService.UpdateStep)

	api.GET("/events", s.EventService.ListEvents)
	api.POST("/events", s.EventService.CreateEvent)
	api.PATCH("/events/:id", s.EventService.UpdateEvent)
	api.DELETE("/events/:id", s.EventService.DeleteEvent)

	api.POST("/dialog/message", s.DialogService.HandleMessage)
	api.POST("/dialog/callback", s.DialogService.HandleCallback)
	api.POST("/dialog/goal-created", s.DialogService.HandleGoalCreated)

	e.POST("/webhooks/:platform", s.DialogService.HandleChatWebhook)
}

// errorResponse is the uniform error body. Internal details never
// leave the server; handlers log them and return a generic message.
type errorResponse struct {
	Message string `json:"message"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, &errorResponse{Message: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, &errorResponse{Message: message})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, &errorResponse{Message: "something went wrong, please retry"})
}
