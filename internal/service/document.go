package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docetl/internal/ingest"
	"docetl/internal/logging"
	"docetl/internal/metrics"
	"docetl/internal/model"
	"docetl/internal/ocr"
	"docetl/internal/repository"
	"docetl/internal/storage"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNameRequired = errors.New("originalName is required")
	ErrRecognition  = errors.New("text recognition failed")
	ErrPersist      = errors.New("artifact write failed")

	ErrIDRequired  = errors.New("id is required")
	ErrNotFound    = errors.New("document not found")
	ErrLogDisabled = errors.New("processing log is not configured")
)

// mirrorPrefix is the object key prefix used when artifacts are mirrored to object storage.
const mirrorPrefix = "ocr_results"

var tracer = otel.Tracer("docetl/internal/service")

// ProcessResult describes a completed intake.
type ProcessResult struct {
	ArtifactPath string
	LineCount    int
	Forwarded    bool
}

// DocumentListResult is the service-level DTO for the paginated processing log.
type DocumentListResult struct {
	Items []model.ProcessedDocument `json:"data"`
	Total int                       `json:"total"`
}

// DocumentService defines the use cases for the intake pipeline.
type DocumentService interface {
	// Process recognizes the text of the file at req.Path, writes the JSON artifact and
	// forwards the text downstream. Forwarding, mirroring and logging are best-effort:
	// once the artifact is written the call succeeds.
	Process(ctx context.Context, req model.IntakeRequest) (*ProcessResult, error)

	// List returns processing log entries using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single processing log entry by its ID.
	Get(ctx context.Context, id string) (*model.ProcessedDocument, error)
}

// Dependencies wires a DocumentService. Engine, Artifacts and Forwarder are required.
type Dependencies struct {
	Engine    ocr.Engine
	Artifacts storage.ArtifactStore
	Forwarder ingest.Forwarder

	// Mirror, Repo and Metrics are optional.
	Mirror  storage.Storage
	Repo    repository.ProcessedDocumentRepository
	Metrics *metrics.Pipeline

	Logger *slog.Logger
}

type documentService struct {
	engine    ocr.Engine
	artifacts storage.ArtifactStore
	forwarder ingest.Forwarder
	mirror    storage.Storage
	repo      repository.ProcessedDocumentRepository
	metrics   *metrics.Pipeline
	log       *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(deps Dependencies) DocumentService {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	fwd := deps.Forwarder
	if fwd == nil {
		fwd = ingest.Noop{}
	}
	return &documentService{
		engine:    deps.Engine,
		artifacts: deps.Artifacts,
		forwarder: fwd,
		mirror:    deps.Mirror,
		repo:      deps.Repo,
		metrics:   deps.Metrics,
		log:       log.With("component", "intake"),
	}
}

func (s *documentService) Process(ctx context.Context, req model.IntakeRequest) (*ProcessResult, error) {
	log := s.log.With("request_id", logging.RequestID(ctx))

	if !isRegularFile(req.Path) {
		s.metrics.Processed(metrics.OutcomeBadRequest)
		log.Warn("intake_rejected", "reason", "file_not_found", "path", req.Path)
		return nil, ErrFileNotFound
	}
	if strings.TrimSpace(req.OriginalName) == "" {
		s.metrics.Processed(metrics.OutcomeBadRequest)
		log.Warn("intake_rejected", "reason", "name_required", "path", req.Path)
		return nil, ErrNameRequired
	}

	log = log.With("path", req.Path, "original_name", req.OriginalName)

	lines, err := s.recognize(ctx, log, req.Path)
	if err != nil {
		s.metrics.Processed(metrics.OutcomeOCRError)
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}
	text := ocr.JoinLines(lines)

	artifact := model.OcrArtifact{Text: text, File: req.OriginalName}
	artifactPath, err := s.artifacts.Save(ctx, req.OriginalName, artifact)
	if err != nil {
		s.metrics.Processed(metrics.OutcomePersistError)
		log.Error("artifact_write_failed", "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	log.Info("artifact_saved", "artifact_path", artifactPath, "line_count", len(lines))

	s.mirrorArtifact(ctx, log, req.OriginalName, artifact)

	forwarded := s.forward(ctx, log, model.ForwardingPayload{Filename: req.OriginalName, Content: text})

	s.record(ctx, log, &model.ProcessedDocument{
		ID:           uuid.NewString(),
		OriginalName: req.OriginalName,
		SourcePath:   req.Path,
		ArtifactPath: artifactPath,
		LineCount:    len(lines),
		Forwarded:    forwarded,
		CreatedAt:    time.Now().UTC(),
	})

	s.metrics.Processed(metrics.OutcomeSuccess)
	return &ProcessResult{ArtifactPath: artifactPath, LineCount: len(lines), Forwarded: forwarded}, nil
}

func (s *documentService) recognize(ctx context.Context, log *slog.Logger, imagePath string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ocr.recognize")
	defer span.End()

	log.Info("ocr_started")
	start := time.Now()
	lines, err := s.engine.Recognize(ctx, imagePath)
	s.metrics.ObserveOCR(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recognition failed")
		log.Error("ocr_failed", "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	span.SetAttributes(attribute.Int("ocr.line_count", len(lines)))
	log.Info("ocr_finished", "line_count", len(lines), "duration_ms", time.Since(start).Milliseconds())
	return lines, nil
}

// forward reports whether the payload was accepted. Failures are only logged.
func (s *documentService) forward(ctx context.Context, log *slog.Logger, p model.ForwardingPayload) bool {
	ctx, span := tracer.Start(ctx, "ingest.forward")
	defer span.End()

	if err := s.forwarder.Forward(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward failed")
		s.metrics.Forwarded(metrics.ForwardFailed)
		log.Warn("forward_failed", "error", err.Error())
		return false
	}
	s.metrics.Forwarded(metrics.ForwardOK)
	log.Info("forward_succeeded")
	return true
}

func (s *documentService) mirrorArtifact(ctx context.Context, log *slog.Logger, originalName string, a model.OcrArtifact) {
	if s.mirror == nil {
		return
	}
	b, err := json.Marshal(a)
	if err != nil {
		log.Warn("artifact_mirror_failed", "error", err.Error())
		return
	}
	key := path.Join(mirrorPrefix, storage.ArtifactName(originalName))
	_, err = s.mirror.Put(ctx, key, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
		Metadata:    map[string]string{"original-filename": originalName},
	})
	if err != nil {
		log.Warn("artifact_mirror_failed", "key", key, "error", err.Error())
		return
	}
	log.Info("artifact_mirrored", "key", key)
}

func (s *documentService) record(ctx context.Context, log *slog.Logger, doc *model.ProcessedDocument) {
	if s.repo == nil {
		return
	}
	if _, err := s.repo.Create(ctx, doc); err != nil {
		log.Warn("processing_log_failed", "error", err.Error())
	}
}

// List returns the processing log page without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if s.repo == nil {
		return nil, ErrLogDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a processing log entry by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.ProcessedDocument, error) {
	if s.repo == nil {
		return nil, ErrLogDisabled
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func isRegularFile(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
