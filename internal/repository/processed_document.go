// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres).
package repository

import (
	"context"

	"docetl/internal/model"
)

// ProcessedDocumentRepository stores the processing log using SQL queries only.
// No business logic here, strictly persistence operations.
type ProcessedDocumentRepository interface {
	// Create inserts a new log entry and returns the stored record.
	Create(ctx context.Context, doc *model.ProcessedDocument) (*model.ProcessedDocument, error)

	// FindByID returns a log entry by its ID.
	FindByID(ctx context.Context, id string) (*model.ProcessedDocument, error)

	// List returns a page of log entries, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.ProcessedDocument], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
