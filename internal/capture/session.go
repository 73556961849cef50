// Package capture coordinates the photo capture flow: a captured photo,
// its editable metadata form, a best-effort analysis side channel, and
// the submit path that uploads the photo and inserts a record.
package capture

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/roster"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/google/uuid"
)

// State is the session's position in the capture flow.
type State int

const (
	StateIdle State = iota
	StateCaptured
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCaptured:
		return "captured"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Form holds the user-editable metadata for the captured photo.
type Form struct {
	Name     string
	Event    string
	Location string
	Date     string
}

// ValidationError rejects a submit locally, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Session is one user's capture flow. Analysis runs fire-and-forget into a
// mailbox slot guarded by a generation counter: a result arriving after a
// retake belongs to a discarded photo and is dropped. The engine call itself
// is never cancelled, only its result loses its audience.
type Session struct {
	ownerID string
	engine  analysis.Engine
	records store.RecordStore
	blobs   store.BlobStore

	now func() time.Time

	// onAnalysisDelivered, when set, fires after each analysis outcome has
	// been delivered or discarded. Tests use it to synchronize.
	onAnalysisDelivered func()

	mu         sync.Mutex
	state      State
	photo      []byte
	form       Form
	generation uint64
	result     *analysis.Result
	pending    bool
}

// NewSession creates an idle capture session for the owner.
func NewSession(ownerID string, engine analysis.Engine, records store.RecordStore, blobs store.BlobStore) *Session {
	return &Session{
		ownerID: ownerID,
		engine:  engine,
		records: records,
		blobs:   blobs,
		now:     time.Now,
		state:   StateIdle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Form returns a copy of the current metadata form.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm replaces the editable metadata fields.
func (s *Session) SetForm(f Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// Analysis returns the delivered result, if any, and whether one is still
// in flight for the current photo.
func (s *Session) Analysis() (*analysis.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.pending
}

// Capture stores the photo, pre-populates the form, and kicks off analysis
// without blocking. The date defaults to the capture day when not prefilled.
func (s *Session) Capture(ctx context.Context, photo []byte, prefill Form) {
	s.mu.Lock()
	s.state = StateCaptured
	s.photo = photo
	s.form = prefill
	if s.form.Date == "" {
		s.form.Date = s.now().UTC().Format("2006-01-02")
	}
	s.generation++
	gen := s.generation
	engine := s.engine
	s.result = nil
	s.pending = engine != nil
	s.mu.Unlock()

	if engine == nil {
		return
	}

	// Detached from the caller's context: a retake drops the result but
	// never cancels the call.
	go s.runAnalysis(context.WithoutCancel(ctx), engine, gen, photo)
}

func (s *Session) runAnalysis(ctx context.Context, engine analysis.Engine, gen uint64, photo []byte) {
	result, err := engine.Analyze(ctx, photo)
	if err != nil {
		log.Printf("analysis unavailable for this capture: %v", err)
		result = nil
	}
	s.deliverAnalysis(gen, result)
	if s.onAnalysisDelivered != nil {
		s.onAnalysisDelivered()
	}
}

// deliverAnalysis places the result in the mailbox slot unless the session
// has moved on to a newer capture or back to idle.
func (s *Session) deliverAnalysis(gen uint64, result *analysis.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state == StateIdle {
		return
	}
	s.result = result
	s.pending = false
}

// Retake discards the photo, the form, and any pending or delivered
// analysis, unconditionally.
func (s *Session) Retake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.photo = nil
	s.form = Form{}
	s.generation++
	s.result = nil
	s.pending = false
}

// Submit validates the form, uploads the photo, and inserts the record.
// The upload must complete before the insert so the record only ever
// references a durable blob. On any failure the form and photo are
// preserved for retry; on success the session returns to idle.
func (s *Session) Submit(ctx context.Context) (*roster.PhotoRecord, error) {
	s.mu.Lock()
	if s.state != StateCaptured {
		s.mu.Unlock()
		return nil, fmt.Errorf("cannot submit from state %s", s.state)
	}

	name := strings.TrimSpace(s.form.Name)
	if name == "" {
		s.mu.Unlock()
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.state = StateSubmitting
	photo := s.photo
	form := s.form
	s.mu.Unlock()

	key := fmt.Sprintf("%d-%s.jpg", s.now().UTC().UnixMilli(), uuid.New().String())

	url, err := s.blobs.Save(ctx, s.ownerID, key, photo, "image/jpeg")
	if err != nil {
		s.failSubmit()
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	record, err := s.records.Insert(ctx, store.NewRecord{
		OwnerID:  s.ownerID,
		Name:     name,
		PhotoURL: url,
		Event:    strings.TrimSpace(form.Event),
		Location: strings.TrimSpace(form.Location),
		Date:     strings.TrimSpace(form.Date),
	})
	if err != nil {
		// The uploaded blob is now orphaned. Accepted inconsistency,
		// no compensating delete.
		log.Printf("record insert failed, blob %s left orphaned: %v", key, err)
		s.failSubmit()
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	s.mu.Lock()
	s.state = StateIdle
	s.photo = nil
	s.form = Form{}
	s.generation++
	s.result = nil
	s.pending = false
	s.mu.Unlock()

	return record, nil
}

// failSubmit returns to Captured with the form intact so the user can retry.
func (s *Session) failSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateCaptured
	}
}
