package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad input"), fiber.StatusBadRequest},
		{Authenticity("bad signature"), fiber.StatusBadRequest},
		{NotFound("missing"), fiber.StatusNotFound},
		{Upstream("provider down", "", nil), fiber.StatusInternalServerError},
		{Persistence("db down", nil), fiber.StatusInternalServerError},
		{Configuration("no creds"), fiber.StatusInternalServerError},
		{errors.New("raw error"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.status, got)
		}
	}
}

func TestUnclassifiedErrorsNeverLookLikeSuccess(t *testing.T) {
	raw := errors.New("pq: connection refused")
	if KindOf(raw) != KindPersistence {
		t.Error("raw errors must map to the persistence kind")
	}
	if MessageOf(raw) != "Internal server error" {
		t.Errorf("raw error message must not leak: %s", MessageOf(raw))
	}
}

func TestWrappingPreservesKind(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("calling provider: %w", Upstream("provider failed", "GATEWAY_ERROR", cause))

	if KindOf(err) != KindUpstream {
		t.Error("wrapped upstream error lost its kind")
	}
	if CodeOf(err) != "GATEWAY_ERROR" {
		t.Errorf("wrapped upstream error lost its code: %s", CodeOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}
