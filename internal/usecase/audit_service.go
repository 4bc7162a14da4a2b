package usecase

import (
	"context"
	"fmt"

	"crypto-audit-service/internal/domain"
)

// AuditReader は監査ログ参照のインターフェース。
type AuditReader interface {
	List(ctx context.Context, size, offset int) ([]*domain.LogEntry, error)
	Count(ctx context.Context) (int64, error)
}

// AuditService は監査ログの参照を提供する。
type AuditService struct {
	repo AuditReader
}

// NewAuditService は新しいAuditServiceを生成する。
func NewAuditService(repo AuditReader) *AuditService {
	return &AuditService{repo: repo}
}

// ListLogs は古い順に並べた監査ログのうち、offset件目からsize件を返す。
func (s *AuditService) ListLogs(ctx context.Context, size, offset int) ([]*domain.LogEntry, error) {
	ctx, span := tracer.Start(ctx, "AuditService.ListLogs")
	defer span.End()

	if size < 0 || offset < 0 {
		return nil, domain.ErrInvalidPagination
	}

	entries, err := s.repo.List(ctx, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: listing logs: %v", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}

// CountLogs は監査ログの総件数を返す。
func (s *AuditService) CountLogs(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "AuditService.CountLogs")
	defer span.End()

	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: counting logs: %v", domain.ErrStoreUnavailable, err)
	}
	return total, nil
}
