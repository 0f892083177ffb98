package imaging

import "fmt"

// FetchError reports a failure to retrieve image bytes: network errors, auth
// failures, or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError reports an unsupported or corrupt image payload.
type DecodeError struct {
	Format string // sniffed format, if any
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("decode %s image: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
