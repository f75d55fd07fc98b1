package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := New(CodeRetrievalFailed, "vector search failed")
	wrapped := fmt.Errorf("lookup events: %w", base)

	if !IsAppError(wrapped) {
		t.Error("wrapped AppError should still be recognized")
	}
	got := AsAppError(wrapped)
	if got.Code != CodeRetrievalFailed {
		t.Errorf("code = %s, want %s", got.Code, CodeRetrievalFailed)
	}
	if got.HTTPStatus != http.StatusBadGateway {
		t.Errorf("http status = %d, want %d", got.HTTPStatus, http.StatusBadGateway)
	}
}

func TestAsAppErrorPlainError(t *testing.T) {
	err := fmt.Errorf("connection refused")
	if IsAppError(err) {
		t.Error("plain error should not be an AppError")
	}
	got := AsAppError(err)
	if got.Code != CodeUnknown {
		t.Errorf("code = %s, want %s", got.Code, CodeUnknown)
	}
	if got.Err == nil {
		t.Error("original error should be preserved as the cause")
	}
}
