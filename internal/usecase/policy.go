package usecase

import (
	"context"
	"log/slog"

	"crypto-audit-service/internal/domain"
)

// BestEffortPolicy は暗号処理の結果と監査ログ書き込みの結果を合成する。
// 書き込みに失敗しても暗号処理の結果をそのまま返す。
type BestEffortPolicy struct{}

// Resolve は書き込み失敗を記録したうえで、常にresultを返す。
func (p *BestEffortPolicy) Resolve(ctx context.Context, op domain.Operation, result *domain.CipherResult, outcome domain.LogWriteOutcome) *domain.CipherResult {
	if outcome.Failed() {
		slog.WarnContext(ctx, "audit log write failed",
			"operation", "append",
			"action", op,
			"error", outcome.Err,
		)
		return result
	}
	slog.DebugContext(ctx, "audit log written",
		"action", op,
		"entry_id", outcome.EntryID,
	)
	return result
}
