package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ikhtibar/internal/model/audit"
	"ikhtibar/internal/pkg/id"
	auditRepo "ikhtibar/internal/repository/audit"
)

// AuditSink accepts audit entries. The middleware records through this
// interface so the store can be swapped in tests.
type AuditSink interface {
	Create(ctx context.Context, entry *audit.Entry) error
}

// AuditService records and queries audit entries.
type AuditService struct {
	sink AuditSink
	repo *auditRepo.AuditRepo
}

// NewAuditService creates the audit service.
func NewAuditService(repo *auditRepo.AuditRepo) *AuditService {
	return &AuditService{
		sink: repo,
		repo: repo,
	}
}

// Record persists an entry best-effort. Auditing must never fail the
// request being audited, so sink errors are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, entry *audit.Entry) {
	if entry.ID == "" {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.sink.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Msg("failed to persist audit entry")
	}
}

// ListEntriesResult is a page of audit entries.
type ListEntriesResult struct {
	Entries  []*audit.Entry `json:"entries"`
	Total    int64          `json:"total"`
	Page     int64          `json:"page"`
	PageSize int64          `json:"page_size"`
}

// ListEntries queries the audit log newest first.
func (s *AuditService) ListEntries(ctx context.Context, filter auditRepo.ListFilter, page, pageSize int64) (*ListEntriesResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	entries, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &ListEntriesResult{
		Entries:  entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
