package services

// ValidationError is a malformed or incomplete chat request. Reason names the
// first violated constraint and is safe to show to the client.
type ValidationError struct {
	Reason string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConfigurationError means the server cannot reach its provider at all, for
// example because no API key was configured.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// RateLimitError is returned once every retry attempt was rate limited.
type RateLimitError struct {
	Message  string
	Attempts int
	Cause    error
}

func (e *RateLimitError) Error() string { return e.Message }

func (e *RateLimitError) Unwrap() error { return e.Cause }

// UpstreamError wraps any other provider failure. Its detail is for logs only.
type UpstreamError struct {
	Message  string
	Attempts int
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Cause }
