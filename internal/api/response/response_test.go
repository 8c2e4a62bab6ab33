package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rsinha/backfolio/internal/core"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestError_CoreError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, core.ErrNoMatch)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "No stocks matched the filter criteria." {
		t.Errorf("error message = %q", body.Error)
	}
}

func TestError_WrappedCoreError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, core.WrapError(core.ErrInvalidRange, errors.New("end before start")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != core.ErrInvalidRange.Message {
		t.Errorf("error message = %q", body.Error)
	}
}

func TestError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("something exploded"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	// internal details never leak
	if body.Error != "an internal error occurred" {
		t.Errorf("error message = %q", body.Error)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidRange, http.StatusBadRequest},
		{core.ErrNoMatch, http.StatusUnprocessableEntity},
		{core.ErrNoPriceData, http.StatusUnprocessableEntity},
		{core.ErrEmptySeries, http.StatusUnprocessableEntity},
		{core.ErrDegenerateRange, http.StatusUnprocessableEntity},
		{core.ErrJobNotFound, http.StatusNotFound},
		{core.ErrArtifactNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
