package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorWrapper(t *testing.T) {
	wrapper := NewWrapper("ketqua", "lookup_date")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		result := wrapper.Wrap(nil, "Không tra được kết quả")
		if result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		baseErr := errors.New("database connection failed")
		wrapped := wrapper.Wrap(baseErr, "Không tra được kết quả")

		if wrapped == nil {
			t.Fatal("expected non-nil wrapped error")
		}

		wrappedErr, ok := wrapped.(*WrappedError)
		if !ok {
			t.Fatal("expected WrappedError type")
		}

		if wrappedErr.Module != "ketqua" {
			t.Errorf("expected module 'ketqua', got '%s'", wrappedErr.Module)
		}

		if wrappedErr.Operation != "lookup_date" {
			t.Errorf("expected operation 'lookup_date', got '%s'", wrappedErr.Operation)
		}

		if wrappedErr.UserMessage != "Không tra được kết quả" {
			t.Errorf("expected user message 'Không tra được kết quả', got '%s'", wrappedErr.UserMessage)
		}

		if !errors.Is(wrapped, baseErr) {
			t.Error("wrapped error should unwrap to base error")
		}
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		baseErr := errors.New("not found")
		wrapped := wrapper.Wrapf(baseErr, "Không có dữ liệu cho ngày %s", "25-07-2024")

		wrappedErr := wrapped.(*WrappedError)
		expected := "Không có dữ liệu cho ngày 25-07-2024"
		if wrappedErr.UserMessage != expected {
			t.Errorf("expected '%s', got '%s'", expected, wrappedErr.UserMessage)
		}
	})
}

func TestGetUserMessage(t *testing.T) {
	t.Run("returns empty string for nil", func(t *testing.T) {
		result := GetUserMessage(nil)
		if result != "" {
			t.Errorf("expected empty string, got '%s'", result)
		}
	})

	t.Run("returns user message from WrappedError", func(t *testing.T) {
		wrapped := &WrappedError{
			Operation:   "test",
			Module:      "test",
			Cause:       errors.New("base error"),
			UserMessage: "user friendly message",
		}

		result := GetUserMessage(wrapped)
		if result != "user friendly message" {
			t.Errorf("expected 'user friendly message', got '%s'", result)
		}
	})

	t.Run("finds WrappedError further down the chain", func(t *testing.T) {
		inner := NewWrapper("phongthuy", "lookup").Wrap(ErrInvalidInput, "Không nhận ra ngày")
		result := GetUserMessage(fmt.Errorf("handler: %w", inner))
		if result != "Không nhận ra ngày" {
			t.Errorf("expected inner user message, got '%s'", result)
		}
	})

	t.Run("returns error string for non-WrappedError", func(t *testing.T) {
		err := errors.New("plain error")
		result := GetUserMessage(err)
		if result != "plain error" {
			t.Errorf("expected 'plain error', got '%s'", result)
		}
	})
}

func TestWrappedError_Error(t *testing.T) {
	wrapped := &WrappedError{
		Operation:   "search",
		Module:      "ketqua",
		Cause:       errors.New("db error"),
		UserMessage: "Tra cứu thất bại",
	}

	errMsg := wrapped.Error()
	expected := "[ketqua:search] Tra cứu thất bại: db error"
	if errMsg != expected {
		t.Errorf("expected '%s', got '%s'", expected, errMsg)
	}
}
