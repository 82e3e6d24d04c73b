package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-taskboard/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution. A handler still running at the deadline
// has its context cancelled and the client receives a 503 envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(message))
	}
}
