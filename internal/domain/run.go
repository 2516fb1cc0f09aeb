package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunStatus represents the lifecycle state of an analysis run.
// Values include RunStatusRunning, RunStatusCompleted, RunStatusEmpty, and
// RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	// RunStatusEmpty marks a run that finished without any matching comments;
	// no artifacts exist for such a run.
	RunStatusEmpty  RunStatus = "empty"
	RunStatusFailed RunStatus = "failed"
)

// StringArray is a custom type for storing string slices as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// AnalysisRun records one pipeline execution: what was requested, what it
// produced, and where the artifacts live. The registry row is write-once
// metadata; pipeline stages of later runs never read it.
type AnalysisRun struct {
	ID            string      `gorm:"type:text;primaryKey" json:"id"`
	Label         string      `gorm:"type:text;not null;index:idx_runs_label" json:"label"`
	Subreddits    StringArray `gorm:"type:text" json:"subreddits"`
	Keywords      StringArray `gorm:"type:text" json:"keywords"`
	Status        RunStatus   `gorm:"type:text;index:idx_runs_status;default:running" json:"status"`
	TotalComments int         `gorm:"default:0" json:"total_comments"`
	PositiveCount int         `gorm:"default:0" json:"positive_count"`
	NegativeCount int         `gorm:"default:0" json:"negative_count"`
	NeutralCount  int         `gorm:"default:0" json:"neutral_count"`
	Warnings      StringArray `gorm:"type:text" json:"warnings,omitempty"`
	OutputDir     string      `gorm:"type:text" json:"output_dir,omitempty"`
	ArchiveKey    string      `gorm:"type:text" json:"archive_key,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for AnalysisRun.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
