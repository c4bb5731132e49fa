package models

import (
	"time"
)

// CompareOperation describes one reconciliation request
type CompareOperation struct {
	ID            string
	SourcePath    string
	DestPath      string
	ExcludeExtras bool
	CreatedAt     time.Time
}

// Validate checks that both folders were selected
func (op *CompareOperation) Validate() error {
	return CheckSelection(op.SourcePath, op.DestPath)
}
