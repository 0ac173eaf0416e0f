package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWithTimeoutBoundsRequestContext(t *testing.T) {
	var deadline time.Time
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	})

	handler := WithTimeout(5 * time.Second)(inner)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))

	if !ok {
		t.Fatal("expected a context deadline on the wrapped request")
	}
	if remaining := time.Until(deadline); remaining > 5*time.Second || remaining <= 0 {
		t.Errorf("deadline outside the configured window: %v remaining", remaining)
	}
}
