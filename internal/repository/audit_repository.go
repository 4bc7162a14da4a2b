// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crypto-audit-service/internal/domain"
)

// LogEntryModel はgorm用のモデル定義。
type LogEntryModel struct {
	ID        string  `gorm:"column:id;type:char(36);primaryKey;index:idx_logs_timestamp_id,priority:2"`
	Timestamp int64   `gorm:"column:timestamp;not null;index:idx_logs_timestamp_id,priority:1"`
	IP        *string `gorm:"column:ip;type:text"`
	Action    string  `gorm:"column:action;type:text;not null"`
	Data      *string `gorm:"column:data;type:text"`
}

// TableName はテーブル名を返す。
func (LogEntryModel) TableName() string {
	return "logs"
}

// BeforeCreate はレコード作成前に時系列順のUUID（v7）を生成する。
func (m *LogEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id.String()
	}
	return nil
}

// toDomain はモデルをドメインエンティティに変換する。
func (m *LogEntryModel) toDomain() *domain.LogEntry {
	entry := &domain.LogEntry{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		IP:        domain.UnknownOrigin,
		Operation: domain.Operation(m.Action),
	}
	// 他の書き込み元が残したNULLや空文字は送信元不明として扱う
	if m.IP != nil && *m.IP != "" {
		entry.IP = *m.IP
	}
	if m.Data != nil {
		entry.Data = *m.Data
	}
	return entry
}

// AuditRepository は監査ログへのアクセスを提供する。
// 追記と参照のみを行い、既存レコードの更新・削除は行わない。
type AuditRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditRepository は新しいAuditRepositoryを生成する。
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db, now: time.Now}
}

// Append は監査ログを1件追加する。IDとタイムスタンプが未設定なら書き込み時に付与する。
func (r *AuditRepository) Append(ctx context.Context, entry *domain.LogEntry) error {
	if entry.Timestamp == 0 {
		entry.Timestamp = r.now().Unix()
	}
	ip := entry.IP
	if ip == "" {
		ip = domain.UnknownOrigin
	}
	data := entry.Data
	model := &LogEntryModel{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		IP:        &ip,
		Action:    string(entry.Operation),
		Data:      &data,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to append log entry",
			"operation", "append",
			"action", entry.Operation,
			"error", err,
		)
		return err
	}
	entry.ID = model.ID
	entry.IP = ip
	return nil
}

// List は古い順（タイムスタンプ昇順、同一時刻はID昇順）に最大size件を返す。
func (r *AuditRepository) List(ctx context.Context, size, offset int) ([]*domain.LogEntry, error) {
	if size == 0 {
		return []*domain.LogEntry{}, nil
	}

	var models []LogEntryModel
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(size).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to list log entries",
			"operation", "list",
			"size", size,
			"offset", offset,
			"error", err,
		)
		return nil, err
	}

	entries := make([]*domain.LogEntry, len(models))
	for i := range models {
		entries[i] = models[i].toDomain()
	}
	return entries, nil
}

// Count は監査ログの総件数を返す。
func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&LogEntryModel{}).Count(&count).Error; err != nil {
		slog.ErrorContext(ctx, "failed to count log entries",
			"operation", "count",
			"error", err,
		)
		return 0, err
	}
	return count, nil
}
