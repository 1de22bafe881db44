package wizard

import "github.com/ppiankov/trustboard/internal/api"

// Fallback messages for failures without a usable server message
const (
	VerifyFallbackMessage = "An unexpected error occurred. Please try again later."
	SubmitFallbackMessage = "An unexpected error occurred"
)

// Failure is the user-facing description of a failed step.
// It never carries raw transport errors.
type Failure struct {
	Message string
	Details string
}

// VerifyFailure describes a failed verification. The server's message is
// shown only for a structured not-found.
func VerifyFailure(err error) *Failure {
	if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindNotFound && apiErr.Message != "" {
		return &Failure{Message: apiErr.Message}
	}
	return &Failure{Message: VerifyFallbackMessage}
}

// SubmitFailure describes a failed submission with the message and details
// the server sent, if any.
func SubmitFailure(err error) *Failure {
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.StatusCode == 0 {
		return &Failure{Message: SubmitFallbackMessage}
	}
	f := &Failure{Message: apiErr.Message, Details: apiErr.Details}
	if f.Message == "" {
		f.Message = SubmitFallbackMessage
	}
	return f
}
