package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanly-gh/remember-me/internal/analysis"
)

// fakeEngine answers with a canned result or error and records whether it
// was invoked.
type fakeEngine struct {
	result *analysis.Result
	err    error
	called bool
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Analyze(ctx context.Context, image []byte) (*analysis.Result, error) {
	e.called = true
	return e.result, e.err
}

func analyzeRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze-face", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAnalyze_Success(t *testing.T) {
	engine := &fakeEngine{
		result: &analysis.Result{
			Available: true,
			FaceCount: 1,
			Faces: []analysis.FaceSummary{
				{PrimaryEmotion: "HAPPY", Smiling: true},
			},
		},
	}
	handler := NewAnalyzeHandler(engine)

	image := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result analysis.Result
	parseJSONResponse(t, recorder, &result)
	if !result.Available || result.FaceCount != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Faces) != 1 || result.Faces[0].PrimaryEmotion != "HAPPY" {
		t.Errorf("face summary not forwarded: %+v", result.Faces)
	}
}

func TestAnalyze_DataURIAccepted(t *testing.T) {
	engine := &fakeEngine{result: &analysis.Result{Available: true}}
	handler := NewAnalyzeHandler(engine)

	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg"))
	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))

	assertStatusCode(t, recorder, http.StatusOK)
	if !engine.called {
		t.Error("engine was never invoked")
	}
}

func TestAnalyze_MissingImage(t *testing.T) {
	engine := &fakeEngine{}
	handler := NewAnalyzeHandler(engine)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no image data provided")
	if engine.called {
		t.Error("engine must not run without an image")
	}
}

func TestAnalyze_InvalidBase64(t *testing.T) {
	engine := &fakeEngine{}
	handler := NewAnalyzeHandler(engine)

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": "%%%not-base64%%%"}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	if engine.called {
		t.Error("engine must not run on undecodable input")
	}
}

func TestAnalyze_InvalidJSONBody(t *testing.T) {
	handler := NewAnalyzeHandler(&fakeEngine{})

	req := httptest.NewRequest(http.MethodPost, "/analyze-face", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestAnalyze_EngineErrorsBecome500(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantError  string
		wantDetail string
	}{
		{
			name:      "startup failure",
			err:       &analysis.EngineError{Kind: analysis.ErrorStartup},
			wantError: "failed to start analysis engine",
		},
		{
			name:       "execution failure with stderr detail",
			err:        &analysis.EngineError{Kind: analysis.ErrorExecution, Detail: "Traceback (most recent call last)"},
			wantError:  "analysis engine failed",
			wantDetail: "Traceback (most recent call last)",
		},
		{
			name:       "unparseable output",
			err:        &analysis.EngineError{Kind: analysis.ErrorResponse, Detail: "not json"},
			wantError:  "analysis engine returned an invalid response",
			wantDetail: "not json",
		},
		{
			name:      "engine unavailable",
			err:       analysis.ErrEngineUnavailable,
			wantError: "analysis engine unavailable",
		},
	}

	image := base64.StdEncoding.EncodeToString([]byte("jpeg"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAnalyzeHandler(&fakeEngine{err: tt.err})

			recorder := httptest.NewRecorder()
			handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))

			assertStatusCode(t, recorder, http.StatusInternalServerError)

			var body map[string]string
			parseJSONResponse(t, recorder, &body)
			if body["error"] != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, body["error"])
			}
			if body["detail"] != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, body["detail"])
			}
		})
	}
}

func TestAnalyze_ServiceSurvivesEngineFailure(t *testing.T) {
	// A failing engine must not poison the handler: the next request, with a
	// healthy engine outcome, is served normally.
	engine := &fakeEngine{err: &analysis.EngineError{Kind: analysis.ErrorExecution, Detail: "exit status 1"}}
	handler := NewAnalyzeHandler(engine)

	image := base64.StdEncoding.EncodeToString([]byte("jpeg"))

	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))
	assertStatusCode(t, recorder, http.StatusInternalServerError)

	engine.err = nil
	engine.result = &analysis.Result{Available: true, FaceCount: 2}

	recorder = httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))
	assertStatusCode(t, recorder, http.StatusOK)

	var result analysis.Result
	parseJSONResponse(t, recorder, &result)
	if result.FaceCount != 2 {
		t.Errorf("subsequent request not served correctly: %+v", result)
	}
}

func TestAnalyze_UnavailableEngineResultForwarded(t *testing.T) {
	// The engine itself reporting available:false is a valid 200 outcome,
	// not an error.
	engine := &fakeEngine{
		result: &analysis.Result{Available: false, Error: "credentials not configured"},
	}
	handler := NewAnalyzeHandler(engine)

	image := base64.StdEncoding.EncodeToString([]byte("jpeg"))
	recorder := httptest.NewRecorder()
	handler.Analyze(recorder, analyzeRequest(t, map[string]string{"image": image}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result analysis.Result
	parseJSONResponse(t, recorder, &result)
	if result.Available {
		t.Error("expected available=false to be forwarded")
	}
}
