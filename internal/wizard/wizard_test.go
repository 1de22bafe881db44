package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/trustboard/internal/api"
	"github.com/ppiankov/trustboard/internal/model"
)

type fakeBackend struct {
	mu       sync.Mutex
	verifies []string
	requests []model.ResearchTaskRequest

	verifyGate chan struct{}
	submitGate chan struct{}
	started    chan struct{}

	verifyResp model.InfluencerVerifyResponse
	verifyErr  error
	task       model.ResearchTask
	submitErr  error
}

func (f *fakeBackend) Verify(ctx context.Context, handle string) (model.InfluencerVerifyResponse, error) {
	f.mu.Lock()
	f.verifies = append(f.verifies, handle)
	resp, err, gate := f.verifyResp, f.verifyErr, f.verifyGate
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return resp, err
}

func (f *fakeBackend) CreateResearchTask(ctx context.Context, req model.ResearchTaskRequest) (model.ResearchTask, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	task, err, gate := f.task, f.submitErr, f.submitGate
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return task, err
}

func (f *fakeBackend) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifies)
}

func (f *fakeBackend) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type recordingNav struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNav) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNav) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

var huberman = model.InfluencerVerifyResponse{ID: 7, Handle: "hubermanlab", MainName: "Andrew Huberman"}

func verified(t *testing.T, backend *fakeBackend, nav Navigator) *Wizard {
	t.Helper()
	backend.verifyResp = huberman
	w := New(backend, nav, nil)
	if err := w.SetHandle("hubermanlab"); err != nil {
		t.Fatalf("SetHandle: %v", err)
	}
	if err := w.Verify(context.Background()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := w.Snapshot().Step; got != StepConfiguring {
		t.Fatalf("step = %v, want configuring", got)
	}
	return w
}

func TestVerifySuccessOffersDefaults(t *testing.T) {
	backend := &fakeBackend{}
	w := verified(t, backend, nil)

	s := w.Snapshot()
	if s.Identity == nil || s.Identity.ID != 7 {
		t.Fatalf("identity = %+v", s.Identity)
	}
	if diff := cmp.Diff(DefaultDraft(), s.Draft); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
	if !s.CanSubmit {
		t.Error("default draft should be submittable")
	}
	if backend.verifies[0] != "hubermanlab" {
		t.Errorf("verified handle = %q", backend.verifies[0])
	}
}

func TestVerifyTrimsHandle(t *testing.T) {
	backend := &fakeBackend{verifyResp: huberman}
	w := New(backend, nil, nil)
	_ = w.SetHandle("  hubermanlab \n")
	if err := w.Verify(context.Background()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if backend.verifies[0] != "hubermanlab" {
		t.Errorf("verified handle = %q", backend.verifies[0])
	}
}

func TestVerifyFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found shows server message",
			err:  &api.Error{Kind: api.KindNotFound, StatusCode: 404, Message: "Influencer not found"},
			want: "Influencer not found",
		},
		{
			name: "not found without message",
			err:  &api.Error{Kind: api.KindNotFound, StatusCode: 404},
			want: VerifyFallbackMessage,
		},
		{
			name: "server error",
			err:  &api.Error{Kind: api.KindServer, StatusCode: 500, Message: "boom"},
			want: VerifyFallbackMessage,
		},
		{
			name: "network",
			err:  &api.Error{Kind: api.KindNetwork, Err: errors.New("connection refused")},
			want: VerifyFallbackMessage,
		},
		{
			name: "plain error",
			err:  errors.New("whatever"),
			want: VerifyFallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{verifyErr: tt.err}
			w := New(backend, nil, nil)
			_ = w.SetHandle("nobody")
			if err := w.Verify(context.Background()); err != nil {
				t.Fatalf("Verify: %v", err)
			}
			s := w.Snapshot()
			if s.Step != StepVerifyFailed {
				t.Fatalf("step = %v, want verify_failed", s.Step)
			}
			if s.Failure == nil || s.Failure.Message != tt.want {
				t.Errorf("failure = %+v, want %q", s.Failure, tt.want)
			}
			if s.Identity != nil {
				t.Error("failed verify must not hold an identity")
			}
		})
	}
}

func TestEditingHandleClearsError(t *testing.T) {
	backend := &fakeBackend{verifyErr: &api.Error{Kind: api.KindNotFound, StatusCode: 404, Message: "Influencer not found"}}
	w := New(backend, nil, nil)
	_ = w.SetHandle("nobody")
	_ = w.Verify(context.Background())

	if err := w.SetHandle("nobody2"); err != nil {
		t.Fatalf("SetHandle: %v", err)
	}
	s := w.Snapshot()
	if s.Failure != nil {
		t.Errorf("failure = %+v, want cleared", s.Failure)
	}
	if s.Step != StepIdle {
		t.Errorf("step = %v, want idle", s.Step)
	}
	if backend.verifyCount() != 1 {
		t.Errorf("verify calls = %d, want 1", backend.verifyCount())
	}
}

func TestVerifyUnavailable(t *testing.T) {
	backend := &fakeBackend{}
	w := New(backend, nil, nil)

	for _, h := range []string{"", "   "} {
		_ = w.SetHandle(h)
		if w.Snapshot().CanVerify {
			t.Errorf("CanVerify with handle %q", h)
		}
		if err := w.Verify(context.Background()); !errors.Is(err, ErrUnavailable) {
			t.Errorf("Verify(%q) = %v, want ErrUnavailable", h, err)
		}
	}
	if backend.verifyCount() != 0 {
		t.Errorf("verify calls = %d, want 0", backend.verifyCount())
	}
}

func TestVerifyInFlightSuppressesDuplicate(t *testing.T) {
	backend := &fakeBackend{
		verifyResp: huberman,
		verifyGate: make(chan struct{}),
		started:    make(chan struct{}, 4),
	}
	w := New(backend, nil, nil)
	_ = w.SetHandle("hubermanlab")

	done := make(chan error, 1)
	go func() { done <- w.Verify(context.Background()) }()
	<-backend.started

	if s := w.Snapshot(); s.Step != StepVerifying || s.CanVerify {
		t.Fatalf("snapshot = %+v, want verifying and not verifiable", s)
	}
	if err := w.Verify(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("second Verify = %v, want ErrUnavailable", err)
	}

	close(backend.verifyGate)
	if err := <-done; err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if backend.verifyCount() != 1 {
		t.Errorf("verify calls = %d, want 1", backend.verifyCount())
	}
}

func TestLateVerifyResultIgnoredAfterReset(t *testing.T) {
	backend := &fakeBackend{
		verifyResp: huberman,
		verifyGate: make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	w := New(backend, nil, nil)
	_ = w.SetHandle("hubermanlab")

	done := make(chan error, 1)
	go func() { done <- w.Verify(context.Background()) }()
	<-backend.started

	w.Reset()
	close(backend.verifyGate)
	<-done

	s := w.Snapshot()
	if s.Step != StepIdle || s.Identity != nil {
		t.Errorf("snapshot = %+v, want idle without identity", s)
	}
}

func TestEditingHandleAbandonsVerify(t *testing.T) {
	backend := &fakeBackend{
		verifyErr:  &api.Error{Kind: api.KindNotFound, StatusCode: 404, Message: "Influencer not found"},
		verifyGate: make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	w := New(backend, nil, nil)
	_ = w.SetHandle("old")

	done := make(chan error, 1)
	go func() { done <- w.Verify(context.Background()) }()
	<-backend.started

	if err := w.SetHandle("new"); err != nil {
		t.Fatalf("SetHandle: %v", err)
	}
	close(backend.verifyGate)
	<-done

	s := w.Snapshot()
	if s.Step != StepIdle || s.Failure != nil {
		t.Errorf("snapshot = %+v, want idle without failure", s)
	}
	if s.Handle != "new" {
		t.Errorf("handle = %q", s.Handle)
	}
}

func TestHandleLockedOnceVerified(t *testing.T) {
	w := verified(t, &fakeBackend{}, nil)
	if err := w.SetHandle("other"); !errors.Is(err, ErrLocked) {
		t.Errorf("SetHandle = %v, want ErrLocked", err)
	}
}

func TestDraftClamping(t *testing.T) {
	w := verified(t, &fakeBackend{}, nil)

	tests := []struct {
		name string
		set  func() error
		get  func(Draft) int
		want int
	}{
		{"claims above max", func() error { return w.SetClaimsCount(150) }, claims, 100},
		{"claims zero", func() error { return w.SetClaimsCount(0) }, claims, 1},
		{"claims negative", func() error { return w.SetClaimsCount(-4) }, claims, 1},
		{"claims input zero", func() error { return w.SetClaimsCountInput("0") }, claims, 1},
		{"claims input text", func() error { return w.SetClaimsCountInput("abc") }, claims, 1},
		{"claims input empty", func() error { return w.SetClaimsCountInput("") }, claims, 1},
		{"claims input trailing", func() error { return w.SetClaimsCountInput("25abc") }, claims, 25},
		{"claims input large", func() error { return w.SetClaimsCountInput("150") }, claims, 100},
		{"tokens below min", func() error { return w.SetMaxTokens(100) }, tokens, 1024},
		{"tokens kept", func() error { return w.SetMaxTokens(3000) }, tokens, 3000},
		{"tokens input text", func() error { return w.SetMaxTokensInput("lots") }, tokens, 1024},
		{"tokens input", func() error { return w.SetMaxTokensInput("4096") }, tokens, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(); err != nil {
				t.Fatalf("set: %v", err)
			}
			if got := tt.get(w.Snapshot().Draft); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func claims(d Draft) int { return d.ClaimsCount }
func tokens(d Draft) int { return d.MaxTokens }

func TestStepMaxTokens(t *testing.T) {
	w := verified(t, &fakeBackend{}, nil)
	_ = w.StepMaxTokens(1)
	if got := w.Snapshot().Draft.MaxTokens; got != 3072 {
		t.Errorf("after +1 got %d, want 3072", got)
	}
	_ = w.StepMaxTokens(-5)
	if got := w.Snapshot().Draft.MaxTokens; got != 1024 {
		t.Errorf("after -5 got %d, want 1024", got)
	}
}

func TestToggleJournal(t *testing.T) {
	w := verified(t, &fakeBackend{}, nil)

	_ = w.ToggleJournal("Nature")
	_ = w.ToggleJournal("Science")
	_ = w.ToggleJournal("Science")
	_ = w.ToggleJournal("Cell")

	want := []string{"PubMed Central", "Cell"}
	if diff := cmp.Diff(want, w.Snapshot().Draft.SelectedJournals); diff != "" {
		t.Errorf("journals mismatch (-want +got):\n%s", diff)
	}
	if err := w.ToggleJournal("Daily Mail"); !errors.Is(err, ErrUnknownJournal) {
		t.Errorf("unknown journal = %v, want ErrUnknownJournal", err)
	}
}

func TestDraftLockedBeforeVerify(t *testing.T) {
	w := New(&fakeBackend{}, nil, nil)
	if err := w.SetClaimsCount(10); !errors.Is(err, ErrLocked) {
		t.Errorf("SetClaimsCount = %v, want ErrLocked", err)
	}
	if err := w.SetTimeRange("yesterday"); err == nil {
		t.Error("unknown time range accepted")
	}
}

func TestSubmitWithoutJournalsSendsNothing(t *testing.T) {
	backend := &fakeBackend{}
	w := verified(t, backend, nil)
	_ = w.ToggleJournal("PubMed Central")
	_ = w.ToggleJournal("Nature")

	if w.Snapshot().CanSubmit {
		t.Error("CanSubmit with no journals")
	}
	if err := w.Submit(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Submit = %v, want ErrUnavailable", err)
	}
	if backend.submitCount() != 0 {
		t.Errorf("submit calls = %d, want 0", backend.submitCount())
	}
}

func TestSubmitBeforeVerifySendsNothing(t *testing.T) {
	backend := &fakeBackend{}
	w := New(backend, nil, nil)
	if err := w.Submit(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Submit = %v, want ErrUnavailable", err)
	}
	if backend.submitCount() != 0 {
		t.Errorf("submit calls = %d", backend.submitCount())
	}
}

func TestSubmitFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{
			name: "validation with details",
			err:  &api.Error{Kind: api.KindValidation, StatusCode: 400, Message: "Invalid request", Details: "claimsCount must be <= 100"},
			want: Failure{Message: "Invalid request", Details: "claimsCount must be <= 100"},
		},
		{
			name: "server without message",
			err:  &api.Error{Kind: api.KindServer, StatusCode: 500},
			want: Failure{Message: SubmitFallbackMessage},
		},
		{
			name: "network",
			err:  &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")},
			want: Failure{Message: SubmitFallbackMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &recordingNav{}
			backend := &fakeBackend{submitErr: tt.err}
			w := verified(t, backend, nav)
			if err := w.Submit(context.Background()); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			s := w.Snapshot()
			if s.Step != StepSubmitFailed {
				t.Fatalf("step = %v, want submit_failed", s.Step)
			}
			if diff := cmp.Diff(&tt.want, s.Failure); diff != "" {
				t.Errorf("failure mismatch (-want +got):\n%s", diff)
			}
			if len(nav.Routes()) != 0 {
				t.Errorf("navigated after failure: %v", nav.Routes())
			}
			if !s.CanSubmit {
				t.Error("retry should be possible after a failure")
			}
		})
	}
}

func TestEditAfterSubmitFailureClearsIt(t *testing.T) {
	backend := &fakeBackend{submitErr: &api.Error{Kind: api.KindServer, StatusCode: 500, Message: "down"}}
	w := verified(t, backend, nil)
	_ = w.Submit(context.Background())

	if err := w.SetNotes("focus on sleep"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	s := w.Snapshot()
	if s.Step != StepConfiguring || s.Failure != nil {
		t.Errorf("snapshot = %+v, want configuring without failure", s)
	}
}

func TestChangeDiscardsIdentity(t *testing.T) {
	w := verified(t, &fakeBackend{}, nil)
	_ = w.SetClaimsCount(10)

	if err := w.Change(); err != nil {
		t.Fatalf("Change: %v", err)
	}
	s := w.Snapshot()
	if s.Step != StepIdle || s.Identity != nil || s.Handle != "" {
		t.Errorf("snapshot = %+v, want empty idle", s)
	}
	if s.Draft.ClaimsCount != 0 {
		t.Errorf("draft survived change: %+v", s.Draft)
	}
}

func TestLateSubmitIgnoredAfterChange(t *testing.T) {
	nav := &recordingNav{}
	backend := &fakeBackend{task: model.ResearchTask{ID: "1"}}
	w := verified(t, backend, nav)

	backend.mu.Lock()
	backend.submitGate = make(chan struct{})
	backend.started = make(chan struct{}, 1)
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-backend.started

	if err := w.Change(); err != nil {
		t.Fatalf("Change: %v", err)
	}
	close(backend.submitGate)
	<-done

	if got := w.Snapshot().Step; got != StepIdle {
		t.Errorf("step = %v, want idle", got)
	}
	if len(nav.Routes()) != 0 {
		t.Errorf("navigated after change: %v", nav.Routes())
	}
}

func TestSubmitInFlightSuppressesDuplicate(t *testing.T) {
	nav := &recordingNav{}
	backend := &fakeBackend{task: model.ResearchTask{ID: "1"}}
	w := verified(t, backend, nav)

	backend.mu.Lock()
	backend.submitGate = make(chan struct{})
	backend.started = make(chan struct{}, 1)
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-backend.started

	if err := w.Submit(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("second Submit = %v, want ErrUnavailable", err)
	}
	if err := w.SetNotes("late edit"); !errors.Is(err, ErrLocked) {
		t.Errorf("edit while submitting = %v, want ErrLocked", err)
	}
	close(backend.submitGate)
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.submitCount() != 1 {
		t.Errorf("submit calls = %d, want 1", backend.submitCount())
	}
	if len(nav.Routes()) != 1 {
		t.Errorf("routes = %v, want one", nav.Routes())
	}
}

func TestEndToEndResearch(t *testing.T) {
	nav := &recordingNav{}
	backend := &fakeBackend{task: model.ResearchTask{ID: "42", InfluencerID: 7, Status: "queued"}}
	w := verified(t, backend, nav)

	if err := w.SetTimeRange(model.TimeRangeLastYear); err != nil {
		t.Fatal(err)
	}
	if err := w.SetClaimsCount(25); err != nil {
		t.Fatal(err)
	}
	_ = w.ToggleJournal("Nature")
	_ = w.ToggleJournal("Science")
	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := model.ResearchTaskRequest{
		InfluencerID:     7,
		TimeRange:        model.TimeRangeLastYear,
		ClaimsCount:      25,
		MaxTokens:        2048,
		SelectedJournals: []string{"PubMed Central", "Science"},
	}
	if backend.submitCount() != 1 {
		t.Fatalf("submit calls = %d, want 1", backend.submitCount())
	}
	if diff := cmp.Diff(want, backend.requests[0]); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/influencers/7"}, nav.Routes()); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}

	s := w.Snapshot()
	if s.Step != StepSubmitted || s.Task == nil || s.Task.ID != "42" {
		t.Errorf("snapshot = %+v", s)
	}
	if err := w.Submit(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("resubmit = %v, want ErrUnavailable", err)
	}
	if err := w.Change(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Change after submit = %v, want ErrUnavailable", err)
	}
	if len(nav.Routes()) != 1 {
		t.Errorf("navigated %d times", len(nav.Routes()))
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"-3", -3, true},
		{"+9x", 9, true},
		{"x9", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		if ok != tt.ok || (tt.want != 0 && got != tt.want) {
			t.Errorf("leadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
