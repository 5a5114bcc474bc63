package mocks

import (
	"context"

	"docetl/internal/model"
	"docetl/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockProcessedDocumentRepository struct {
	mock.Mock
}

func (m *MockProcessedDocumentRepository) Create(ctx context.Context, doc *model.ProcessedDocument) (*model.ProcessedDocument, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessedDocument), args.Error(1)
}

func (m *MockProcessedDocumentRepository) FindByID(ctx context.Context, id string) (*model.ProcessedDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessedDocument), args.Error(1)
}

func (m *MockProcessedDocumentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ProcessedDocument], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ProcessedDocument]), args.Error(1)
}
