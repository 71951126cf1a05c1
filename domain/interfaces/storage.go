package interfaces

import "pfda_functional/domain/entities"

// ReportStore keeps the history of page check results
type ReportStore interface {
	// Append adds a result to the history
	Append(result entities.CheckResult) error

	// Load returns all stored results, oldest first
	Load() ([]entities.CheckResult, error)
}
