package v1

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/initio-ai/initio/plugin/chat_apps"
	"github.com/initio-ai/initio/plugin/chat_apps/channels"
	"github.com/initio-ai/initio/server/service/scheduling"
)

// DialogService drives the goal scheduling conversation. The JSON
// endpoints serve the web client; HandleChatWebhook serves chat
// platforms through the channel router.
type DialogService struct {
	Engine        *scheduling.Engine
	ChannelRouter *channels.ChannelRouter
}

type dialogButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callbackData"`
}

type dialogReply struct {
	Text    string         `json:"text"`
	Buttons []dialogButton `json:"buttons,omitempty"`
}

func replyFromEngine(reply *scheduling.Reply) *dialogReply {
	out := &dialogReply{Text: reply.Text}
	for _, button := range reply.Buttons {
		out.Buttons = append(out.Buttons, dialogButton{Text: button.Text, CallbackData: button.CallbackData})
	}
	return out
}

type dialogMessageRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

func (s *DialogService) HandleMessage(c echo.Context) error {
	var req dialogMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || req.Text == "" {
		return badRequest(c, "userId and text are required")
	}

	reply, err := s.Engine.ProcessText(c.Request().Context(), req.UserID, req.Text)
	if err != nil {
		slog.Error("failed to process dialog message", "userID", req.UserID, "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, replyFromEngine(reply))
}

type dialogCallbackRequest struct {
	UserID string `json:"userId"`
	Data   string `json:"data"`
}

func (s *DialogService) HandleCallback(c echo.Context) error {
	var req dialogCallbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || req.Data == "" {
		return badRequest(c, "userId and data are required")
	}

	sig, err := scheduling.DecodeCallback(req.Data)
	if err != nil {
		return badRequest(c, "unrecognized callback data")
	}
	reply, err := s.Engine.Process(c.Request().Context(), req.UserID, sig)
	if err != nil {
		slog.Error("failed to process dialog callback", "userID", req.UserID, "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, replyFromEngine(reply))
}

type goalCreatedRequest struct {
	UserID string `json:"userId"`
	GoalID int32  `json:"goalId"`
}

// HandleGoalCreated kicks off the scheduling dialog after a goal is
// created, asking the user for a deadline.
func (s *DialogService) HandleGoalCreated(c echo.Context) error {
	var req goalCreatedRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == "" || req.GoalID == 0 {
		return badRequest(c, "userId and goalId are required")
	}

	reply, err := s.Engine.Process(c.Request().Context(), req.UserID, scheduling.GoalCreated{GoalID: req.GoalID})
	if err != nil {
		slog.Error("failed to start scheduling dialog", "userID", req.UserID, "goalID", req.GoalID, "error", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, replyFromEngine(reply))
}

// HandleChatWebhook receives platform webhooks, routes the payload to
// the matching channel, runs the dialog engine, and replies in-channel.
func (s *DialogService) HandleChatWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	platform := chat_apps.Platform(c.Param("platform"))

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "failed to read request body")
	}
	headers := make(map[string]string, len(c.Request().Header))
	for key := range c.Request().Header {
		headers[key] = c.Request().Header.Get(key)
	}

	msg, err := s.ChannelRouter.HandleWebhook(ctx, platform, headers, body)
	if err != nil {
		slog.Warn("rejected chat webhook", "platform", platform, "error", err)
		return badRequest(c, "invalid webhook payload")
	}
	if msg == nil {
		// Update the channel does not care about, e.g. an edited message.
		return c.NoContent(http.StatusOK)
	}

	channel := s.ChannelRouter.GetChannel(platform)
	if channel == nil {
		return notFound(c, "unknown platform")
	}

	var reply *scheduling.Reply
	if msg.CallbackData != "" {
		sig, decodeErr := scheduling.DecodeCallback(msg.CallbackData)
		if decodeErr != nil {
			slog.Warn("unrecognized callback data", "platform", platform, "data", msg.CallbackData)
			return c.NoContent(http.StatusOK)
		}
		reply, err = s.Engine.Process(ctx, msg.PlatformUserID, sig)
		if ackErr := channel.AckCallback(ctx, msg.CallbackID); ackErr != nil {
			slog.Warn("failed to ack callback", "platform", platform, "error", ackErr)
		}
	} else {
		reply, err = s.Engine.ProcessText(ctx, msg.PlatformUserID, msg.Content)
	}
	if err != nil {
		slog.Error("failed to process chat message", "platform", platform, "userID", msg.PlatformUserID, "error", err)
		return internalError(c)
	}

	out := &chat_apps.OutgoingMessage{
		PlatformChatID: msg.PlatformChatID,
		Content:        reply.Text,
	}
	for _, button := range reply.Buttons {
		out.Buttons = append(out.Buttons, chat_apps.Button{Text: button.Text, Data: button.CallbackData})
	}
	if err := channel.SendMessage(ctx, out); err != nil {
		slog.Error("failed to send chat reply", "platform", platform, "error", err)
		return internalError(c)
	}
	return c.NoContent(http.StatusOK)
}
