package postgres

import (
	"context"
	"database/sql"

	"docetl/internal/model"
	"docetl/internal/repository"
)

// ProcessedDocumentPostgres is a PostgreSQL implementation of repository.ProcessedDocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ProcessedDocumentPostgres struct {
	db *sql.DB
}

// NewProcessedDocumentPostgres creates a new ProcessedDocumentPostgres repository.
func NewProcessedDocumentPostgres(db *sql.DB) *ProcessedDocumentPostgres {
	return &ProcessedDocumentPostgres{db: db}
}

var _ repository.ProcessedDocumentRepository = (*ProcessedDocumentPostgres)(nil)

const selectColumns = `id, original_name, source_path, artifact_path, line_count, forwarded, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.ProcessedDocument, error) {
	var d model.ProcessedDocument
	if err := row.Scan(
		&d.ID,
		&d.OriginalName,
		&d.SourcePath,
		&d.ArtifactPath,
		&d.LineCount,
		&d.Forwarded,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new row and returns the stored record.
func (r *ProcessedDocumentPostgres) Create(ctx context.Context, doc *model.ProcessedDocument) (*model.ProcessedDocument, error) {
	const q = `
		INSERT INTO processed_documents (id, original_name, source_path, artifact_path, line_count, forwarded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + selectColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OriginalName,
		doc.SourcePath,
		doc.ArtifactPath,
		doc.LineCount,
		doc.Forwarded,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single row by its ID. sql.ErrNoRows is returned unchanged.
func (r *ProcessedDocumentPostgres) FindByID(ctx context.Context, id string) (*model.ProcessedDocument, error) {
	const q = `SELECT ` + selectColumns + ` FROM processed_documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns rows using LIMIT/OFFSET pagination and a total count.
func (r *ProcessedDocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ProcessedDocument], error) {
	const qCount = `SELECT COUNT(*) FROM processed_documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + selectColumns + ` FROM processed_documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ProcessedDocument, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ProcessedDocument]{
		Items: items,
		Total: total,
	}, nil
}
