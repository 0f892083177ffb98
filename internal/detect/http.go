package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	HTTPDetectorName   = "http"
	DefaultHTTPTimeout = 120 * time.Second
)

// HTTPConfig holds configuration for the HTTP detector client.
type HTTPConfig struct {
	// Endpoint is the detection service URL; the image is POSTed to it.
	Endpoint string
	// Timeout bounds each detection call. Defaults to DefaultHTTPTimeout.
	Timeout time.Duration
	// Proxy, when set, routes detection traffic through the given proxy URL.
	Proxy string
}

// HTTPDetector implements Detector against a line-detection HTTP service.
// The service accepts a raw image body and returns JSON paragraphs of lines
// with normalized geometry.
type HTTPDetector struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPDetector creates an HTTP detector client.
func NewHTTPDetector(cfg HTTPConfig) (*HTTPDetector, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("detector endpoint is required")
	}
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid detector endpoint: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	transport := http.DefaultTransport
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid detector proxy: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(proxyURL)
		transport = t
	}

	return &HTTPDetector{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// Name returns the detector identifier.
func (d *HTTPDetector) Name() string { return HTTPDetectorName }

// detectResponse is the service's wire format.
type detectResponse struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Detect posts the image to the detection service and decodes the returned
// paragraphs. Every failure is wrapped as an *OracleError.
func (d *HTTPDetector) Detect(ctx context.Context, image []byte, lang string) ([]Paragraph, error) {
	endpoint := *d.endpoint
	if lang != "" {
		// Merge into any query the configured endpoint already carries.
		q := endpoint.Query()
		q.Set("lang", lang)
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(image))
	if err != nil {
		return nil, &OracleError{Detector: d.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &OracleError{Detector: d.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &OracleError{
			Detector: d.Name(),
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &OracleError{Detector: d.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Paragraphs, nil
}
