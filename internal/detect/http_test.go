package detect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHTTPDetectorRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPDetector(HTTPConfig{}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestNewHTTPDetectorRejectsBadProxy(t *testing.T) {
	_, err := NewHTTPDetector(HTTPConfig{
		Endpoint: "http://127.0.0.1:9090/detect",
		Proxy:    "http://bad proxy",
	})
	if err == nil {
		t.Fatal("expected error for malformed proxy URL")
	}
}

func TestHTTPDetectorDetect(t *testing.T) {
	var gotLang, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.URL.Query().Get("lang")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		json.NewEncoder(w).Encode(detectResponse{
			Paragraphs: []Paragraph{{
				Lines: []Line{{
					Text:     "吾輩は猫である",
					Geometry: &Geometry{CenterX: 0.5, CenterY: 0.1, Width: 0.02, Height: 0.4, Rotation: 1.57},
				}},
			}},
		})
	}))
	defer srv.Close()

	d, err := NewHTTPDetector(HTTPConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	paragraphs, err := d.Detect(context.Background(), []byte("png-bytes"), "ja")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if gotLang != "ja" {
		t.Errorf("lang = %q", gotLang)
	}
	if gotContentType != "image/png" {
		t.Errorf("content type = %q", gotContentType)
	}
	if string(gotBody) != "png-bytes" {
		t.Errorf("body = %q", gotBody)
	}

	if len(paragraphs) != 1 || len(paragraphs[0].Lines) != 1 {
		t.Fatalf("paragraphs = %+v", paragraphs)
	}
	line := paragraphs[0].Lines[0]
	if line.Text != "吾輩は猫である" {
		t.Errorf("text = %q", line.Text)
	}
	if line.Geometry == nil || line.Geometry.Rotation != 1.57 {
		t.Errorf("geometry = %+v", line.Geometry)
	}
}

func TestHTTPDetectorEndpointWithQuery(t *testing.T) {
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(detectResponse{})
	}))
	defer srv.Close()

	// The configured endpoint already carries a query string; the language
	// hint must merge into it rather than appending a second "?".
	d, err := NewHTTPDetector(HTTPConfig{Endpoint: srv.URL + "/detect?key=abc"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Detect(context.Background(), []byte("x"), "ja"); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if got := gotQuery["key"]; len(got) != 1 || got[0] != "abc" {
		t.Errorf("key = %v, want [abc]", got)
	}
	if got := gotQuery["lang"]; len(got) != 1 || got[0] != "ja" {
		t.Errorf("lang = %v, want [ja]", got)
	}
}

func TestNewHTTPDetectorRejectsBadEndpoint(t *testing.T) {
	if _, err := NewHTTPDetector(HTTPConfig{Endpoint: "http://bad endpoint"}); err == nil {
		t.Fatal("expected error for malformed endpoint URL")
	}
}

func TestHTTPDetectorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d, err := NewHTTPDetector(HTTPConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Detect(context.Background(), []byte("png-bytes"), "ja")
	var oerr *OracleError
	if !errors.As(err, &oerr) {
		t.Fatalf("error type = %T, want *OracleError", err)
	}
	if oerr.Detector != HTTPDetectorName {
		t.Errorf("detector = %q", oerr.Detector)
	}
}

func TestHTTPDetectorBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	d, err := NewHTTPDetector(HTTPConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Detect(context.Background(), []byte("x"), ""); err == nil {
		t.Fatal("expected error for malformed response")
	}
}
