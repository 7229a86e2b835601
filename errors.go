package adtokens

import "fmt"

// APIError is a non-2xx response from the AdTokens API. It carries the
// original status code and the raw body text, which usually contains the
// server's error message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}
