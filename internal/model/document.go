package model

import "time"

// ProcessedDocument is one entry of the processing log.
// It is a pure domain model with no database-specific dependencies or tags.
type ProcessedDocument struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	SourcePath   string    `json:"source_path"`
	ArtifactPath string    `json:"artifact_path"`
	LineCount    int       `json:"line_count"`
	Forwarded    bool      `json:"forwarded"`
	CreatedAt    time.Time `json:"created_at"`
}
