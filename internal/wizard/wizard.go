// Package wizard drives the two-step research flow: verify an influencer,
// then configure and submit a research task for them.
//
// The flow is a single state machine. A verified identity exists only in
// the configuring steps, so "configuring with nobody verified" cannot be
// represented. Every asynchronous attempt is tagged with a counter; results
// arriving after a reset or change are dropped.
package wizard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/model"
)

// Step is the wizard's position in the flow
type Step int

const (
	StepIdle Step = iota
	StepVerifying
	StepVerifyFailed
	StepConfiguring
	StepSubmitting
	StepSubmitFailed
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepVerifying:
		return "verifying"
	case StepVerifyFailed:
		return "verify_failed"
	case StepConfiguring:
		return "configuring"
	case StepSubmitting:
		return "submitting"
	case StepSubmitFailed:
		return "submit_failed"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Verified reports whether an identity is held in this step
func (s Step) Verified() bool {
	return s >= StepConfiguring
}

var (
	// ErrUnavailable is returned when an action is disabled in the current state
	ErrUnavailable = errors.New("action not available")
	// ErrLocked is returned when editing something the current step does not own
	ErrLocked = errors.New("field cannot be edited now")
	// ErrUnknownJournal is returned when toggling a journal outside the catalogue
	ErrUnknownJournal = errors.New("unknown journal")
)

// Backend is what the wizard calls out to
type Backend interface {
	Verify(ctx context.Context, handle string) (model.InfluencerVerifyResponse, error)
	CreateResearchTask(ctx context.Context, req model.ResearchTaskRequest) (model.ResearchTask, error)
}

// Navigator changes the current route
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

// Navigate calls f(route)
func (f NavigatorFunc) Navigate(route string) { f(route) }

// Snapshot is a copy of the wizard state for rendering
type Snapshot struct {
	Step      Step
	Handle    string
	Identity  *model.InfluencerVerifyResponse
	Draft     Draft
	Failure   *Failure
	Task      *model.ResearchTask
	CanVerify bool
	CanSubmit bool
}

// Wizard is safe for concurrent use; asynchronous calls may run on other
// goroutines while the UI keeps reading snapshots.
type Wizard struct {
	backend Backend
	nav     Navigator
	logger  *zap.Logger

	mu       sync.Mutex
	step     Step
	handle   string
	identity *model.InfluencerVerifyResponse
	draft    Draft
	failure  *Failure
	task     *model.ResearchTask
	attempt  uint64
	cancel   context.CancelFunc
}

// New creates a wizard in the idle step
func New(backend Backend, nav Navigator, logger *zap.Logger) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{
		backend: backend,
		nav:     nav,
		logger:  logger.Named("wizard"),
		step:    StepIdle,
	}
}

// Snapshot returns a copy of the current state
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Step:      w.step,
		Handle:    w.handle,
		Draft:     w.draft.clone(),
		CanVerify: w.canVerify(),
		CanSubmit: w.canSubmit(),
	}
	if w.identity != nil {
		id := *w.identity
		s.Identity = &id
	}
	if w.failure != nil {
		f := *w.failure
		s.Failure = &f
	}
	if w.task != nil {
		t := *w.task
		s.Task = &t
	}
	return s
}

// SetHandle edits the handle input. A previous verify error is cleared,
// and an in-flight verify for the old text is abandoned.
func (w *Wizard) SetHandle(handle string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepIdle:
	case StepVerifyFailed:
		w.failure = nil
		w.step = StepIdle
	case StepVerifying:
		w.invalidate()
		w.step = StepIdle
	default:
		return ErrLocked
	}
	w.handle = handle
	return nil
}

// Verify checks the handle with the backend. It returns ErrUnavailable,
// without sending anything, when the handle is blank or a verify is
// already running. The outcome is read from Snapshot.
func (w *Wizard) Verify(ctx context.Context) error {
	w.mu.Lock()
	if !w.canVerify() {
		w.mu.Unlock()
		return ErrUnavailable
	}
	handle := strings.TrimSpace(w.handle)
	attempt, ctx := w.begin(ctx)
	w.step = StepVerifying
	w.failure = nil
	w.mu.Unlock()

	w.logger.Debug("verifying", zap.String("handle", handle), zap.Uint64("attempt", attempt))
	resp, err := w.backend.Verify(ctx, handle)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current(attempt) {
		w.logger.Debug("dropped stale verify result", zap.Uint64("attempt", attempt))
		return nil
	}
	w.end()

	if err != nil {
		w.step = StepVerifyFailed
		w.failure = VerifyFailure(err)
		w.logger.Debug("verify failed", zap.Error(err))
		return nil
	}

	w.identity = &resp
	w.draft = DefaultDraft()
	w.step = StepConfiguring
	w.logger.Debug("verified", zap.Int("influencer_id", resp.ID))
	return nil
}

// Change discards the verified identity and its draft and returns to an
// empty handle. A submission still in flight is abandoned.
func (w *Wizard) Change() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.step.Verified() || w.step == StepSubmitted {
		return ErrUnavailable
	}
	w.clear()
	return nil
}

// Reset returns the wizard to its initial state from anywhere
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clear()
}

// SetTimeRange selects the look-back window
func (w *Wizard) SetTimeRange(r model.TimeRange) error {
	if _, err := model.ParseTimeRange(string(r)); err != nil {
		return err
	}
	return w.edit(func(d *Draft) { d.TimeRange = r })
}

// SetClaimsCount sets the number of claims, clamped to [1,100]
func (w *Wizard) SetClaimsCount(n int) error {
	return w.edit(func(d *Draft) { d.ClaimsCount = ClampClaimsCount(n) })
}

// SetClaimsCountInput sets the number of claims from typed text
func (w *Wizard) SetClaimsCountInput(s string) error {
	return w.edit(func(d *Draft) { d.ClaimsCount = ParseClaimsCount(s) })
}

// SetMaxTokens sets the token limit, floored at 1024
func (w *Wizard) SetMaxTokens(n int) error {
	return w.edit(func(d *Draft) { d.MaxTokens = ClampMaxTokens(n) })
}

// SetMaxTokensInput sets the token limit from typed text
func (w *Wizard) SetMaxTokensInput(s string) error {
	return w.edit(func(d *Draft) { d.MaxTokens = ParseMaxTokens(s) })
}

// StepMaxTokens moves the token limit by delta steps of 1024
func (w *Wizard) StepMaxTokens(delta int) error {
	return w.edit(func(d *Draft) { d.MaxTokens = ClampMaxTokens(d.MaxTokens + delta*model.MaxTokensStep) })
}

// ToggleJournal selects or deselects a catalogue journal
func (w *Wizard) ToggleJournal(journal string) error {
	if !slices.Contains(model.Journals, journal) {
		return ErrUnknownJournal
	}
	return w.edit(func(d *Draft) {
		if i := slices.Index(d.SelectedJournals, journal); i >= 0 {
			d.SelectedJournals = slices.Delete(d.SelectedJournals, i, i+1)
			return
		}
		d.SelectedJournals = append(d.SelectedJournals, journal)
	})
}

// SetNotes sets the free-form instructions
func (w *Wizard) SetNotes(notes string) error {
	return w.edit(func(d *Draft) { d.Notes = notes })
}

// Submit creates the research task. It returns ErrUnavailable, without
// sending anything, when no journal is selected or a submission is
// running. On success the wizard becomes terminal and navigates to the
// influencer's detail route once.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if !w.canSubmit() {
		w.mu.Unlock()
		return ErrUnavailable
	}
	req := w.draft.Request(w.identity.ID)
	attempt, ctx := w.begin(ctx)
	w.step = StepSubmitting
	w.failure = nil
	w.mu.Unlock()

	w.logger.Debug("submitting research task",
		zap.Int("influencer_id", req.InfluencerID),
		zap.String("time_range", string(req.TimeRange)),
		zap.Int("claims", req.ClaimsCount),
		zap.Strings("journals", req.SelectedJournals),
		zap.Uint64("attempt", attempt))
	task, err := w.backend.CreateResearchTask(ctx, req)

	w.mu.Lock()
	if !w.current(attempt) {
		w.mu.Unlock()
		w.logger.Debug("dropped stale submit result", zap.Uint64("attempt", attempt))
		return nil
	}
	w.end()

	if err != nil {
		w.step = StepSubmitFailed
		w.failure = SubmitFailure(err)
		w.mu.Unlock()
		w.logger.Debug("submit failed", zap.Error(err))
		return nil
	}

	w.task = &task
	w.step = StepSubmitted
	route := dashboard.Route(w.identity.ID)
	w.mu.Unlock()

	w.logger.Info("research task created", zap.String("task_id", task.ID), zap.String("route", route))
	if w.nav != nil {
		w.nav.Navigate(route)
	}
	return nil
}

func (w *Wizard) canVerify() bool {
	return (w.step == StepIdle || w.step == StepVerifyFailed) && strings.TrimSpace(w.handle) != ""
}

func (w *Wizard) canSubmit() bool {
	return (w.step == StepConfiguring || w.step == StepSubmitFailed) && len(w.draft.SelectedJournals) > 0
}

// edit applies fn to the draft. Editing after a failed submission clears
// the failure and returns to configuring.
func (w *Wizard) edit(fn func(d *Draft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepConfiguring:
	case StepSubmitFailed:
		w.failure = nil
		w.step = StepConfiguring
	default:
		return ErrLocked
	}
	fn(&w.draft)
	return nil
}

// begin starts a new attempt; callers hold mu
func (w *Wizard) begin(ctx context.Context) (uint64, context.Context) {
	w.invalidate()
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	return w.attempt, ctx
}

// end releases the current attempt's context; callers hold mu
func (w *Wizard) end() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// invalidate fences off the running attempt; callers hold mu
func (w *Wizard) invalidate() {
	w.attempt++
	w.end()
}

func (w *Wizard) current(attempt uint64) bool {
	return w.attempt == attempt
}

// clear drops everything back to idle; callers hold mu
func (w *Wizard) clear() {
	w.invalidate()
	w.step = StepIdle
	w.handle = ""
	w.identity = nil
	w.draft = Draft{}
	w.failure = nil
	w.task = nil
}
