package chat

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arvind9018/edusource-backend/services/gemini"
	"github.com/arvind9018/edusource-backend/utils/response"
	"github.com/arvind9018/edusource-backend/utils/validation"
)

// ChatHandler relays chat messages to the generative language API
type ChatHandler struct {
	client    *gemini.Client // nil when no API key is configured
	validator *validation.Validator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(client *gemini.Client) *ChatHandler {
	return &ChatHandler{
		client:    client,
		validator: validation.NewValidator(),
	}
}

// ChatRequest is the relay request body
type ChatRequest struct {
	Message string           `json:"message" validate:"required"`
	History []gemini.Message `json:"history" validate:"omitempty,dive"`
}

// HandleChat handles POST /api/v1/chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	if h.client == nil {
		return response.InternalServerError(c, "Chat service is not configured")
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, "Message is required")
	}

	messages := append(req.History, gemini.Message{Role: "user", Text: req.Message})

	reply, err := h.client.GenerateContent(c.Context(), messages)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate a reply")
	}

	return response.Success(c, fiber.Map{
		"reply": reply,
	})
}
