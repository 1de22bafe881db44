package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/trustboard/internal/model"
)

// Verifier checks whether a handle belongs to a tracked influencer
type Verifier interface {
	Verify(ctx context.Context, handle string) (model.InfluencerVerifyResponse, error)
}

// VerifyJob verifies one handle
type VerifyJob struct {
	Handle   string
	Verifier Verifier
}

// Execute runs the verification
func (j *VerifyJob) Execute(ctx context.Context) Result {
	resp, err := j.Verifier.Verify(ctx, j.Handle)
	if err != nil {
		return &VerifyResult{Handle: j.Handle, Err: err}
	}
	return &VerifyResult{Handle: j.Handle, Influencer: &resp}
}

// VerifyResult is the outcome for one handle
type VerifyResult struct {
	Handle     string
	Influencer *model.InfluencerVerifyResponse
	Err        error
}

// GetError returns the verification error, if any
func (r *VerifyResult) GetError() error {
	return r.Err
}

// BatchVerifier verifies many handles concurrently
type BatchVerifier struct {
	verifier    Verifier
	concurrency int
	logger      *zap.Logger
}

// NewBatchVerifier creates a batch verifier running concurrency workers
func NewBatchVerifier(verifier Verifier, concurrency int, logger *zap.Logger) *BatchVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchVerifier{
		verifier:    verifier,
		concurrency: concurrency,
		logger:      logger.Named("batch"),
	}
}

// VerifyHandles verifies handles and returns one result per handle, in
// input order. Handles left unprocessed because ctx ended get ctx's error.
func (b *BatchVerifier) VerifyHandles(ctx context.Context, handles []string) []*VerifyResult {
	if len(handles) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, h := range handles {
		if !pool.Submit(&VerifyJob{Handle: h, Verifier: b.verifier}) {
			break
		}
	}
	results := pool.Wait()

	out := make([]*VerifyResult, len(handles))
	byHandle := make(map[string]*VerifyResult, len(results))
	for _, r := range results {
		vr := r.(*VerifyResult)
		byHandle[vr.Handle] = vr
	}
	for i, h := range handles {
		if vr, ok := byHandle[h]; ok {
			out[i] = vr
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &VerifyResult{Handle: h, Err: fmt.Errorf("verify %s: %w", h, err)}
	}

	b.logger.Debug("batch finished", zap.Int("handles", len(handles)), zap.Int("completed", len(results)))
	return out
}

// VerifyFile reads handles from path and verifies them
func (b *BatchVerifier) VerifyFile(ctx context.Context, path string) ([]*VerifyResult, error) {
	handles, err := ReadHandlesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handles: %w", err)
	}
	return b.VerifyHandles(ctx, handles), nil
}

// ReadHandlesFromFile reads handles from a file, one per line
func ReadHandlesFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadHandles(file)
}

// ReadHandles reads one handle per line, skipping blanks and # comments.
// Repeated handles are kept once, at their first position.
func ReadHandles(r io.Reader) ([]string, error) {
	var handles []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			handles = append(handles, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan handles: %w", err)
	}
	return handles, nil
}
