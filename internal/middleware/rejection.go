package middleware

import (
	"fmt"
	"net/http"
)

// Reason says why the ledger middleware turned a request away.
type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonRateLimited  Reason = "rate-limited"
)

// Rejection is returned by the ledger middleware instead of writing a
// response, so the server's error handler renders every refusal the same way.
type Rejection struct {
	Reason Reason
	Detail string
	// RetryAfter is set for rate limited requests.
	RetryAfter int
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

// Status is the HTTP status the rejection maps to.
func (r *Rejection) Status() int {
	if r.Reason == ReasonRateLimited {
		return http.StatusTooManyRequests
	}
	return http.StatusUnauthorized
}

func unauthorized(detail string) error {
	return &Rejection{Reason: ReasonUnauthorized, Detail: detail}
}

func rateLimited(retryAfter int) error {
	return &Rejection{
		Reason:     ReasonRateLimited,
		Detail:     fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter),
		RetryAfter: retryAfter,
	}
}
