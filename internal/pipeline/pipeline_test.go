package pipeline

import (
	"context"
	"errors"
	"image"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mizutori/pagelens/internal/detect"
	"github.com/mizutori/pagelens/internal/imaging"
)

// newPageServer serves a blank PNG of the given dimensions at every path.
func newPageServer(t *testing.T, w, h int) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write(data)
	}))
}

func newTestProcessor(det detect.Detector) *Processor {
	return New(imaging.NewFetcher(5*time.Second), det, nil, Config{
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	})
}

func TestProcessSingleBand(t *testing.T) {
	srv := newPageServer(t, 200, 100)
	defer srv.Close()

	mock := detect.NewMockDetector([]detect.Paragraph{{
		Lines: []detect.Line{{
			Text:     "テスト",
			Geometry: &detect.Geometry{CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.2},
		}},
	}})

	results, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/p1.png", "", "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	got := results[0]
	if got.Text != "テスト" {
		t.Errorf("text = %q", got.Text)
	}

	// The 100x20 pixel box maps back to image fractions.
	approx := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	box := got.TightBoundingBox
	if !approx(box.X, 0.25) || !approx(box.Y, 0.4) || !approx(box.Width, 0.5) || !approx(box.Height, 0.2) {
		t.Errorf("box = %+v", box)
	}
	if got.ForcedOrientation != "horizontal" {
		t.Errorf("orientation = %q", got.ForcedOrientation)
	}
}

func TestProcessStitchesBands(t *testing.T) {
	// 6000px tall page splits into two bands; the detector reports the
	// same line in each, so the second result must land in the lower half
	// of the image.
	srv := newPageServer(t, 10, 6000)
	defer srv.Close()

	mock := detect.NewMockDetector([]detect.Paragraph{{
		Lines: []detect.Line{{
			Text:     "行",
			Geometry: &detect.Geometry{CenterX: 0.5, CenterY: 0.5, Width: 0.8, Height: 0.1},
		}},
	}})

	results, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/p1.png", "", "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if mock.Calls() != 2 {
		t.Errorf("detector called %d times, want 2 (one per band)", mock.Calls())
	}

	approx := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	// Band-local center 0.5 of a 3000px band: top of the 300px line sits
	// at 1350, stitched by the band offset and normalized by 6000.
	if !approx(results[0].TightBoundingBox.Y, 1350.0/6000) {
		t.Errorf("first band Y = %v", results[0].TightBoundingBox.Y)
	}
	if !approx(results[1].TightBoundingBox.Y, 4350.0/6000) {
		t.Errorf("second band Y = %v", results[1].TightBoundingBox.Y)
	}
}

func TestProcessDropsUnusableLines(t *testing.T) {
	srv := newPageServer(t, 100, 100)
	defer srv.Close()

	mock := detect.NewMockDetector([]detect.Paragraph{{
		Lines: []detect.Line{
			{Text: "no geometry"},
			{Text: "", Geometry: &detect.Geometry{CenterX: 0.5, CenterY: 0.5, Width: 0.1, Height: 0.1}},
			{Text: "keep", Geometry: &detect.Geometry{CenterX: 0.5, CenterY: 0.5, Width: 0.4, Height: 0.1}},
		},
	}})

	results, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/p.png", "", "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results) != 1 || results[0].Text != "keep" {
		t.Errorf("results = %+v, want only %q", results, "keep")
	}
}

func TestProcessRetriesTransientFailures(t *testing.T) {
	srv := newPageServer(t, 100, 100)
	defer srv.Close()

	mock := detect.NewMockDetector(nil)
	mock.Err = errors.New("backend hiccup")
	mock.FailFirst = 1

	results, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/p.png", "", "")
	if err != nil {
		t.Fatalf("Process after transient failure: %v", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want none", results)
	}
	if mock.Calls() != 2 {
		t.Errorf("detector called %d times, want 2", mock.Calls())
	}
}

func TestProcessExhaustsRetryBudget(t *testing.T) {
	srv := newPageServer(t, 100, 100)
	defer srv.Close()

	mock := detect.NewMockDetector(nil)
	mock.Err = errors.New("backend down")

	_, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/p.png", "", "")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var oerr *detect.OracleError
	if !errors.As(err, &oerr) {
		t.Errorf("error type = %T, want *detect.OracleError", err)
	}
	if mock.Calls() != 3 {
		t.Errorf("detector called %d times, want 3", mock.Calls())
	}
}

func TestProcessFetchFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	mock := detect.NewMockDetector(nil)
	_, err := newTestProcessor(mock).Process(context.Background(), srv.URL+"/gone.png", "", "")
	var ferr *imaging.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *imaging.FetchError", err)
	}
	if mock.Calls() != 0 {
		t.Errorf("detector called %d times for a failed fetch", mock.Calls())
	}
}
