package model

import "time"

// VerificationStatus is the outcome recorded for a claim
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "Verified"
	StatusQuestionable VerificationStatus = "Questionable"
	StatusDebunked     VerificationStatus = "Debunked"
)

// Claim is a single assertion attributed to an influencer.
// The three journal sets may overlap in what the backend sends.
type Claim struct {
	ID                 int                `json:"id"`
	Text               string             `json:"text"`
	Category           string             `json:"category"`
	Source             string             `json:"source"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	JournalsVerified   []string           `json:"journalsVerified"`
	JournalsQuestioned []string           `json:"journalsQuestioned"`
	JournalsDebunked   []string           `json:"journalsDebunked"`
	Score              float64            `json:"score"` // 0..1
	FirstDetectedAt    time.Time          `json:"firstDetectedAt"`
}
