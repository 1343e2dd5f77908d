package httputil

import "net/http"

// RetryableStatus reports whether a response status is worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
