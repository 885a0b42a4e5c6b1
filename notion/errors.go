package notion

import (
	"errors"
	"net/http"

	"github.com/jomei/notionapi"
)

// Common Notion adapter errors.
var (
	// ErrInvalidID indicates an id or URL without a recognizable Notion id.
	ErrInvalidID = errors.New("notion: invalid id")

	// ErrRateLimited indicates the API rejected a request with 429.
	ErrRateLimited = errors.New("notion: rate limit exceeded")

	// ErrNotFound indicates the page or block does not exist or is not shared
	// with the integration.
	ErrNotFound = errors.New("notion: object not found")
)

// IsRateLimited reports whether err is a Notion rate limit response.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || string(apiErr.Code) == "rate_limited"
	}
	return false
}

// IsNotFound reports whether err means the object is missing.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || string(apiErr.Code) == "object_not_found"
	}
	return false
}
