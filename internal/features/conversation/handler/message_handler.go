package handler

import (
	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/conversation/service"
	trackingservice "tracking-bot/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MessageHandler handles HTTP requests from the chat gateway webhook.
type MessageHandler struct {
	dispatcher *service.Dispatcher
	registry   *trackingservice.Registry
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(dispatcher *service.Dispatcher, registry *trackingservice.Registry) *MessageHandler {
	return &MessageHandler{
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// inboundMessage is the gateway's webhook event body.
type inboundMessage struct {
	// UserID identifies the message author.
	UserID string `json:"user_id"`
	// ChannelID is the private channel the message arrived in.
	ChannelID string `json:"channel_id"`
	// Text is the message content.
	Text string `json:"text"`
}

// HandleMessage godoc
// @Summary Process an inbound chat message
// @Description Routes a message event from the chat gateway into the bot: commands start a registration or list trackings, other text feeds the author's active registration session.
// @Tags messages
// @Accept json
// @Produce json
// @Param message body inboundMessage true "Message event"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) HandleMessage(c *fiber.Ctx) error {
	var msg inboundMessage
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid message body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if msg.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "user_id is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.dispatcher.HandleMessage(c.UserContext(), msg.UserID, msg.ChannelID, msg.Text); err != nil {
		// One user's failed exchange already notified them; the gateway only
		// needs to know the event was not processed cleanly.
		logger.Get().Error("Message handling failed",
			zap.String("user_id", msg.UserID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "message handling failed",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// ListTrackings godoc
// @Summary List a user's registered trackings
// @Description Returns the user's tracked shipments in registration order.
// @Tags trackings
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} domain.TrackedShipment
// @Failure 400 {object} ErrorResponse
// @Router /users/{id}/trackings [get]
func (h *MessageHandler) ListTrackings(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "user id is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(h.registry.List(c.UserContext(), userID))
}
