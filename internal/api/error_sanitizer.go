package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/skicrew/inscriptions/internal/pkg/httputil"
)

// Internal errors (database details, file paths, provider responses) are
// never leaked to API consumers. 5xx responses carry a generic safe message
// while the full error is logged server-side.

// respondSafeError logs the internal error and sends a sanitized JSON error
// response to the client.
func respondSafeError(w http.ResponseWriter, code int, internalErr error) {
	msg := safeErrorMessage(code, internalErr)
	if internalErr != nil {
		log.Printf("ERROR [%d]: %s: %v", code, msg, internalErr)
	}
	httputil.Error(w, code, msg)
}

// isStorageError reports whether an error from a service write looks like a
// database or connection failure rather than an input validation message.
// Validation messages are safe to echo back; storage errors are not.
func isStorageError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "sql") ||
		strings.Contains(s, "pq:") ||
		strings.Contains(s, "connection") ||
		strings.Contains(s, "database") ||
		strings.Contains(s, "timeout")
}

// safeErrorMessage maps internal error patterns to public-safe messages.
// 4xx errors are about user input and keep their original message; 5xx
// errors get a generic one.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "bad request"
	}

	if internalErr == nil {
		return "an internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "query") ||
		strings.Contains(errStr, "scan") ||
		strings.Contains(errStr, "transaction") ||
		strings.Contains(errStr, "database"):
		return "a database error occurred"

	case strings.Contains(errStr, "rejected") ||
		strings.Contains(errStr, "ses") ||
		strings.Contains(errStr, "email provider"):
		return "the email provider rejected the message"

	default:
		return "an internal error occurred"
	}
}
