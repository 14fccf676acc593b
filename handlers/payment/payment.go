package payment

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arvind9018/edusource-backend/services"
	"github.com/arvind9018/edusource-backend/utils/apperror"
	"github.com/arvind9018/edusource-backend/utils/middleware"
	"github.com/arvind9018/edusource-backend/utils/validation"
)

// Dispatch actions accepted by the payment endpoint
const (
	ActionCreateOrder   = "create_order"
	ActionVerifyPayment = "verify_payment"
)

// PaymentHandler handles the payment endpoint. The endpoint is a single
// POST route dispatching on the "action" field of the body, matching
// the frontend's checkout integration.
type PaymentHandler struct {
	service   *services.PaymentService
	validator *validation.Validator
	guard     *middleware.VerifyGuard // nil when Redis is unavailable
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *services.PaymentService, guard *middleware.VerifyGuard) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: validation.NewValidator(),
		guard:     guard,
	}
}

// CreateOrderRequest is the create_order body
type CreateOrderRequest struct {
	Amount   int64  `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
}

// VerifyPaymentRequest is the verify_payment body; field names follow
// the Razorpay checkout callback payload
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	CourseID          string `json:"courseId" validate:"required"`
	CourseTitle       string `json:"courseTitle" validate:"required"`
	UserID            string `json:"userId" validate:"required"`
}

// HandleInfo handles GET /api/payment with an informational response
func (h *PaymentHandler) HandleInfo(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Payment endpoint. Send a POST request with an action of create_order or verify_payment.",
		"actions": []string{ActionCreateOrder, ActionVerifyPayment},
	})
}

// HandlePayment handles POST /api/payment, dispatching on the action field
func (h *PaymentHandler) HandlePayment(c *fiber.Ctx) error {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body.",
		})
	}

	switch envelope.Action {
	case ActionCreateOrder:
		return h.createOrder(c)
	case ActionVerifyPayment:
		return h.verifyPayment(c)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid action specified.",
		})
	}
}

func (h *PaymentHandler) createOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body.",
		})
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing required order details.",
		})
	}

	result, err := h.service.CreateOrder(c.Context(), services.CreateOrderInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		CourseID: req.CourseID,
		UserID:   req.UserID,
	})
	if err != nil {
		return h.orderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"orderId":  result.OrderID,
		"amount":   result.Amount,
		"currency": result.Currency,
	})
}

func (h *PaymentHandler) verifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body.",
		})
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required payment verification details.",
		})
	}

	result, err := h.service.VerifyPayment(c.Context(), services.VerificationInput{
		PaymentID:   req.RazorpayPaymentID,
		OrderID:     req.RazorpayOrderID,
		Signature:   req.RazorpaySignature,
		CourseID:    req.CourseID,
		CourseTitle: req.CourseTitle,
		UserID:      req.UserID,
	})
	if err != nil {
		if h.guard != nil && apperror.KindOf(err) == apperror.KindAuthenticity {
			h.guard.RecordFailure(c, c.IP())
		}
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{
			"success": false,
			"message": apperror.MessageOf(err),
		})
	}

	if h.guard != nil {
		h.guard.RecordSuccess(c, c.IP())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"status":  result.Status,
		"message": result.Message,
	})
}

// orderError writes a create_order failure, passing through the
// provider's detail and code when present
func (h *PaymentHandler) orderError(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"success": false,
		"error":   apperror.MessageOf(err),
	}
	if code := apperror.CodeOf(err); code != "" {
		body["code"] = code
	}
	if apperror.KindOf(err) == apperror.KindUpstream {
		if cause := unwrapMessage(err); cause != "" {
			body["details"] = cause
		}
	}
	return c.Status(apperror.HTTPStatus(err)).JSON(body)
}

func unwrapMessage(err error) string {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if cause := u.Unwrap(); cause != nil {
			return cause.Error()
		}
	}
	return ""
}
