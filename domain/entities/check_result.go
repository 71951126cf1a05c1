package entities

import "time"

// CheckResult represents one run of a page check
type CheckResult struct {
	ID        string        `json:"id"`
	Page      string        `json:"page"`
	URL       string        `json:"url"`
	Activated bool          `json:"activated"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Passed reports whether the check finished without error and the link was activated
func (r CheckResult) Passed() bool {
	return r.Error == "" && r.Activated
}
