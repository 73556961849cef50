package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/store/mock"
)

// stubEngine is a controllable analysis.Engine for session tests.
type stubEngine struct {
	result *analysis.Result
	err    error
	block  chan struct{} // when non-nil, Analyze waits for it to close
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Analyze(ctx context.Context, image []byte) (*analysis.Result, error) {
	if e.block != nil {
		<-e.block
	}
	return e.result, e.err
}

func newTestSession(t *testing.T, engine analysis.Engine) (*Session, *mock.RecordStore, *mock.BlobStore) {
	t.Helper()
	records := mock.NewRecordStore()
	blobs := mock.NewBlobStore()
	return NewSession("owner-1", engine, records, blobs), records, blobs
}

// delivered wires a channel to the session's analysis notification so tests
// can wait for the fire-and-forget goroutine deterministically.
func delivered(s *Session) chan struct{} {
	ch := make(chan struct{}, 1)
	s.onAnalysisDelivered = func() { ch <- struct{}{} }
	return ch
}

func waitDelivered(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis was never delivered")
	}
}

func TestCapture_AnalysisArrivesAsSideChannel(t *testing.T) {
	engine := &stubEngine{
		result: &analysis.Result{Available: true, FaceCount: 1},
	}
	s, _, _ := newTestSession(t, engine)
	done := delivered(s)

	s.Capture(context.Background(), []byte("photo"), Form{})
	if s.State() != StateCaptured {
		t.Fatalf("expected captured state, got %s", s.State())
	}

	waitDelivered(t, done)

	result, pending := s.Analysis()
	if pending {
		t.Error("analysis still pending after delivery")
	}
	if result == nil || result.FaceCount != 1 {
		t.Errorf("unexpected analysis result: %+v", result)
	}
}

func TestCapture_DateDefaultsToCaptureDay(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	s.now = func() time.Time {
		return time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	}

	s.Capture(context.Background(), []byte("photo"), Form{Name: "Ann"})

	if got := s.Form().Date; got != "2025-06-01" {
		t.Errorf("expected capture-day date, got %q", got)
	}
}

func TestSubmit_EmptyNameRejectedLocally(t *testing.T) {
	s, records, blobs := newTestSession(t, nil)

	s.Capture(context.Background(), []byte("photo"), Form{Name: "   "})

	_, err := s.Submit(context.Background())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "name" {
		t.Errorf("expected name field, got %q", vErr.Field)
	}
	if records.Count() != 0 {
		t.Error("insert must not be called on validation failure")
	}
	if blobs.Count() != 0 {
		t.Error("upload must not be called on validation failure")
	}
	if s.State() != StateCaptured {
		t.Errorf("form must stay available, got state %s", s.State())
	}
}

func TestSubmit_InsertReferencesUploadedBlob(t *testing.T) {
	s, records, blobs := newTestSession(t, nil)

	s.Capture(context.Background(), []byte("jpeg-bytes"), Form{
		Name:     "Ann",
		Event:    "conference",
		Location: "Prague",
	})

	rec, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !strings.HasPrefix(rec.PhotoURL, "https://blobs.test/owner-1/") {
		t.Errorf("record references unknown blob URL: %s", rec.PhotoURL)
	}
	key := strings.TrimPrefix(rec.PhotoURL, "https://blobs.test/owner-1/")
	data, ok := blobs.Blob("owner-1", key)
	if !ok {
		t.Fatal("record references a blob that was never uploaded")
	}
	if string(data) != "jpeg-bytes" {
		t.Error("uploaded blob content mismatch")
	}

	if records.Count() != 1 {
		t.Fatalf("expected 1 record, got %d", records.Count())
	}
	if rec.Name != "Ann" || rec.Event != "conference" || rec.Location != "Prague" {
		t.Errorf("record fields mismatch: %+v", rec)
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle after success, got %s", s.State())
	}
}

func TestSubmit_UploadFailurePreservesForm(t *testing.T) {
	s, records, blobs := newTestSession(t, nil)
	blobs.SaveError = errors.New("storage offline")

	s.Capture(context.Background(), []byte("photo"), Form{Name: "Ann", Event: "party"})

	_, err := s.Submit(context.Background())
	if err == nil {
		t.Fatal("expected submit to fail")
	}
	if records.Count() != 0 {
		t.Error("insert must not run after a failed upload")
	}
	if s.State() != StateCaptured {
		t.Errorf("expected captured state for retry, got %s", s.State())
	}
	if f := s.Form(); f.Name != "Ann" || f.Event != "party" {
		t.Errorf("form not preserved: %+v", f)
	}
}

func TestSubmit_InsertFailureLeavesOrphanedBlob(t *testing.T) {
	s, records, blobs := newTestSession(t, nil)
	records.InsertError = errors.New("database offline")

	s.Capture(context.Background(), []byte("photo"), Form{Name: "Ann"})

	_, err := s.Submit(context.Background())
	if err == nil {
		t.Fatal("expected submit to fail")
	}
	if blobs.Count() != 1 {
		t.Errorf("expected the orphaned blob to remain, got %d blobs", blobs.Count())
	}
	if s.State() != StateCaptured {
		t.Errorf("expected captured state for retry, got %s", s.State())
	}
	if s.Form().Name != "Ann" {
		t.Error("form not preserved after insert failure")
	}

	// Retry succeeds once the store recovers.
	records.InsertError = nil
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if records.Count() != 1 {
		t.Errorf("expected 1 record after retry, got %d", records.Count())
	}
}

func TestSubmit_SucceedsWithoutAnalysisEndpoint(t *testing.T) {
	// An unset endpoint disables analysis entirely. Submit must not care.
	client := analysis.NewRelayClient("")
	s, records, _ := newTestSession(t, client)
	done := delivered(s)

	s.Capture(context.Background(), []byte("photo"), Form{Name: "Ann"})
	waitDelivered(t, done)

	result, pending := s.Analysis()
	if result != nil || pending {
		t.Error("expected no analysis outcome with endpoint unset")
	}

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit must succeed without analysis: %v", err)
	}
	if records.Count() != 1 {
		t.Errorf("expected 1 record, got %d", records.Count())
	}
}

func TestRetake_ClearsEverything(t *testing.T) {
	s, _, _ := newTestSession(t, nil)

	s.Capture(context.Background(), []byte("photo"), Form{
		Name: "Ann", Event: "party", Location: "Prague", Date: "2025-06-01",
	})
	s.Retake()

	if s.State() != StateIdle {
		t.Errorf("expected idle after retake, got %s", s.State())
	}
	if f := s.Form(); f != (Form{}) {
		t.Errorf("form not cleared: %+v", f)
	}
	if result, pending := s.Analysis(); result != nil || pending {
		t.Error("analysis state not cleared")
	}

	// A discarded capture must not leak into the next one.
	s.Capture(context.Background(), []byte("photo2"), Form{})
	if f := s.Form(); f.Name != "" || f.Event != "" || f.Location != "" {
		t.Errorf("previous capture leaked into new form: %+v", f)
	}
}

func TestRetake_DiscardsInFlightAnalysis(t *testing.T) {
	engine := &stubEngine{
		result: &analysis.Result{Available: true, FaceCount: 2},
		block:  make(chan struct{}),
	}
	s, _, _ := newTestSession(t, engine)
	done := delivered(s)

	s.Capture(context.Background(), []byte("photo"), Form{Name: "Ann"})
	s.Retake()

	// The engine finishes after the retake; its result has no audience.
	close(engine.block)
	waitDelivered(t, done)

	if result, pending := s.Analysis(); result != nil || pending {
		t.Error("stale analysis result must be discarded after retake")
	}
}

func TestStaleResultDiscardedAcrossCaptures(t *testing.T) {
	engine := &stubEngine{
		result: &analysis.Result{Available: true, FaceCount: 5},
		block:  make(chan struct{}),
	}
	s, _, _ := newTestSession(t, engine)
	done := delivered(s)

	s.Capture(context.Background(), []byte("first"), Form{})
	s.Retake()

	engine2 := &stubEngine{result: &analysis.Result{Available: true, FaceCount: 1}}
	s.engine = engine2
	s.Capture(context.Background(), []byte("second"), Form{})
	waitDelivered(t, done)

	// First capture's engine finally answers; it must not overwrite the
	// second capture's slot.
	close(engine.block)
	waitDelivered(t, done)

	result, _ := s.Analysis()
	if result == nil || result.FaceCount != 1 {
		t.Errorf("stale result overwrote current capture: %+v", result)
	}
}

func TestSubmit_FromIdleRejected(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("expected error submitting from idle")
	}
}
