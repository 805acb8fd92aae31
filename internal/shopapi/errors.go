package shopapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrUnauthorized matches any APIError with a 401 or 403 status.
var ErrUnauthorized = errors.New("shopapi: unauthorized")

// APIError is a request the remote API answered with a failure.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("shopapi %s: %d %s", e.Op, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// PublicMessage returns the remote message of err when there is one, for
// showing to the user.
func PublicMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return ""
}
