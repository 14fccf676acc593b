package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arvind9018/edusource-backend/model"
	"github.com/arvind9018/edusource-backend/utils/apperror"
)

// Verification result statuses
const (
	PaymentStatusSuccess         = "success"
	PaymentStatusAlreadyEnrolled = "already_enrolled"
)

// MinOrderAmount is the smallest payable amount in minor currency units
const MinOrderAmount = 100

// ErrCourseNotFound is returned by EnrollmentStore implementations when
// the referenced course does not exist
var ErrCourseNotFound = errors.New("course not found")

// GatewayOrder is the provider-side order returned from order creation
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// OrderGateway is the payment-provider collaborator. Implemented by the
// Razorpay client; substituted with a fake in tests.
type OrderGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// EnrollmentStore is the persistence collaborator for the verification
// flow. Implemented by the GORM store; substituted with a fake in tests.
type EnrollmentStore interface {
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	IsEnrolled(ctx context.Context, courseID, userID string) (bool, error)
	Enroll(ctx context.Context, record *model.EnrollmentRecord) error
}

// PaymentService orchestrates order creation and payment verification.
// It holds no state between requests; every call starts fresh.
type PaymentService struct {
	gateway OrderGateway
	store   EnrollmentStore
}

// NewPaymentService creates a new payment service. A nil gateway is
// allowed so the server can boot without provider credentials; the
// affected operations then fail fast with a configuration error.
func NewPaymentService(gateway OrderGateway, store EnrollmentStore) *PaymentService {
	return &PaymentService{
		gateway: gateway,
		store:   store,
	}
}

// CreateOrderInput carries the fields of a create_order request
type CreateOrderInput struct {
	Amount   int64
	Currency string
	CourseID string
	UserID   string
}

// OrderResult echoes the created order back to the caller
type OrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder validates the request and creates an order with the
// payment provider. Nothing is persisted locally.
func (s *PaymentService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	if in.Amount == 0 || in.Currency == "" || in.CourseID == "" || in.UserID == "" {
		return nil, apperror.Validation("Missing required order details.")
	}
	if in.Amount < MinOrderAmount {
		return nil, apperror.Validation("Order amount is too low.")
	}
	if s.gateway == nil {
		return nil, apperror.Configuration("Payment gateway is not configured.")
	}

	// Receipt must be unique per request and at most 40 characters
	// (Razorpay constraint)
	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixNano())

	// Course and user ride along as opaque notes so the payment can be
	// correlated back after checkout
	notes := map[string]interface{}{
		"courseId": in.CourseID,
		"userId":   in.UserID,
	}

	order, err := s.gateway.CreateOrder(ctx, in.Amount, in.Currency, receipt, notes)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Upstream("Failed to create payment order.", "", err)
	}

	return &OrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

// VerificationInput carries the provider callback payload plus the
// original course/user identifiers
type VerificationInput struct {
	PaymentID   string
	OrderID     string
	Signature   string
	CourseID    string
	CourseTitle string
	UserID      string
}

// VerificationResult reports the outcome of a verification request
type VerificationResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VerifyPayment checks the provider signature and, on success, grants
// the user access to the course. The whole flow is idempotent: a repeat
// of the same payload reports already_enrolled and mutates nothing.
func (s *PaymentService) VerifyPayment(ctx context.Context, in VerificationInput) (*VerificationResult, error) {
	if in.PaymentID == "" || in.OrderID == "" || in.Signature == "" ||
		in.CourseID == "" || in.CourseTitle == "" || in.UserID == "" {
		return nil, apperror.Validation("Missing required payment verification details.")
	}
	if s.gateway == nil {
		return nil, apperror.Configuration("Payment gateway is not configured.")
	}

	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return nil, apperror.Authenticity("Payment signature verification failed.")
	}

	course, err := s.store.GetCourse(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, apperror.NotFound("Course not found for enrollment.")
		}
		return nil, apperror.Persistence("Failed to load course for enrollment.", err)
	}

	enrolled, err := s.store.IsEnrolled(ctx, course.ID, in.UserID)
	if err != nil {
		return nil, apperror.Persistence("Failed to check enrollment status.", err)
	}
	if enrolled {
		return &VerificationResult{
			Status:  PaymentStatusAlreadyEnrolled,
			Message: "User is already enrolled in this course.",
		}, nil
	}

	record := &model.EnrollmentRecord{
		UserID:            in.UserID,
		CourseID:          course.ID,
		CourseTitle:       in.CourseTitle,
		RazorpayOrderID:   in.OrderID,
		RazorpayPaymentID: in.PaymentID,
		Amount:            course.Price,
		Currency:          course.Currency,
		EnrollmentType:    model.EnrollmentTypePaid,
		Status:            model.EnrollmentStatusCompleted,
		Notes: map[string]interface{}{
			"courseId": in.CourseID,
			"userId":   in.UserID,
		},
	}

	if err := s.store.Enroll(ctx, record); err != nil {
		return nil, apperror.Persistence("Failed to record enrollment.", err)
	}

	return &VerificationResult{
		Status:  PaymentStatusSuccess,
		Message: "Payment verified and enrollment completed.",
	}, nil
}
