package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crypto-audit-service/internal/domain"
)

// setupTestDB はテスト用のSQLiteデータベースを一時ディレクトリに作成する。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrator().CreateTable(&LogEntryModel{}); err != nil {
		t.Fatalf("failed to create logs table: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func insertLog(t *testing.T, db *gorm.DB, id string, ts int64, data string) {
	t.Helper()
	if err := db.Exec("INSERT INTO logs (id, timestamp, ip, action, data) VALUES (?, ?, ?, ?, ?)",
		id, ts, "127.0.0.1", "encrypt", data).Error; err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
}

func TestAuditRepository_Append(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)
	repo.now = func() time.Time { return time.Unix(1700000000, 0) }

	entry := &domain.LogEntry{
		IP:        "10.0.0.1",
		Operation: domain.OperationEncrypt,
		Data:      "hello-world",
	}
	if err := repo.Append(ctx, entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// UUID自動生成を確認
	if _, err := uuid.Parse(entry.ID); err != nil {
		t.Errorf("expected generated UUID, got %q", entry.ID)
	}
	if entry.Timestamp != 1700000000 {
		t.Errorf("expected timestamp 1700000000, got %d", entry.Timestamp)
	}

	var model LogEntryModel
	if err := db.Where("id = ?", entry.ID).First(&model).Error; err != nil {
		t.Fatalf("failed to fetch record: %v", err)
	}
	if model.Action != "encrypt" {
		t.Errorf("expected action=encrypt, got %s", model.Action)
	}
	if model.Data == nil || *model.Data != "hello-world" {
		t.Errorf("expected data=hello-world, got %v", model.Data)
	}
	if model.IP == nil || *model.IP != "10.0.0.1" {
		t.Errorf("expected ip=10.0.0.1, got %v", model.IP)
	}
}

func TestAuditRepository_Append_UnknownOrigin(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	entry := &domain.LogEntry{Operation: domain.OperationDecrypt, Data: "x"}
	if err := repo.Append(ctx, entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.IP != domain.UnknownOrigin {
		t.Errorf("expected ip=%q, got %q", domain.UnknownOrigin, entry.IP)
	}
	if entry.Timestamp == 0 {
		t.Error("expected timestamp to be set")
	}
}

func TestAuditRepository_List_NullOrigin(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	if err := db.Exec("INSERT INTO logs (id, timestamp, ip, action, data) VALUES (?, ?, NULL, ?, NULL)",
		"legacy", 1, "decrypt").Error; err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}

	entries, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].IP != domain.UnknownOrigin {
		t.Errorf("expected ip=%q, got %q", domain.UnknownOrigin, entries[0].IP)
	}
	if entries[0].Data != "" {
		t.Errorf("expected empty data, got %q", entries[0].Data)
	}
}

func TestAuditRepository_Append_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		entry := &domain.LogEntry{Operation: domain.OperationEncrypt, Data: fmt.Sprintf("d%d", i)}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if seen[entry.ID] {
			t.Fatalf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestAuditRepository_Append_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	// SQLiteは書き込みを直列化するため接続を1本に絞る
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Append(ctx, &domain.LogEntry{Operation: domain.OperationEncrypt, Data: fmt.Sprintf("c%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 10 {
		t.Errorf("expected 10 records, got %d", count)
	}
}

func TestAuditRepository_List_Order(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	// 挿入順と時系列順を意図的にずらす
	insertLog(t, db, "00000000-0000-0000-0000-00000000000c", 300, "third")
	insertLog(t, db, "00000000-0000-0000-0000-00000000000b", 100, "first-b")
	insertLog(t, db, "00000000-0000-0000-0000-00000000000a", 100, "first-a")
	insertLog(t, db, "00000000-0000-0000-0000-00000000000d", 200, "second")

	entries, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"first-a", "first-b", "second", "third"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Data != want[i] {
			t.Errorf("entries[%d]: expected %s, got %s", i, want[i], e.Data)
		}
	}
	if entries[0].Operation != domain.OperationEncrypt {
		t.Errorf("expected operation=encrypt, got %s", entries[0].Operation)
	}
	if entries[0].IP != "127.0.0.1" {
		t.Errorf("expected ip=127.0.0.1, got %s", entries[0].IP)
	}
}

func TestAuditRepository_List_PaginationCoversAll(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	const n = 23
	for i := 0; i < n; i++ {
		// 同一タイムスタンプを多く含める
		insertLog(t, db, uuid.NewString(), int64(1000+i/5), fmt.Sprintf("entry-%02d", i))
	}

	full, err := repo.List(ctx, n, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	for _, k := range []int{1, 2, 4, 5, 7, 23, 50} {
		var paged []*domain.LogEntry
		for offset := 0; offset < n; offset += k {
			page, err := repo.List(ctx, k, offset)
			if err != nil {
				t.Fatalf("List(%d, %d) failed: %v", k, offset, err)
			}
			if len(page) > k {
				t.Fatalf("List(%d, %d) returned %d entries", k, offset, len(page))
			}
			paged = append(paged, page...)
		}
		if len(paged) != n {
			t.Fatalf("k=%d: expected %d entries, got %d", k, n, len(paged))
		}
		for i := range paged {
			if paged[i].ID != full[i].ID {
				t.Errorf("k=%d: position %d: expected %s, got %s", k, i, full[i].ID, paged[i].ID)
			}
		}
	}
}

func TestAuditRepository_List_ZeroSizeAndBeyondEnd(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	insertLog(t, db, uuid.NewString(), 1, "only")

	entries, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", entries)
	}

	entries, err = repo.List(ctx, 10, 5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestAuditRepository_Count(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0, got %d", count)
	}

	for i := 0; i < 3; i++ {
		insertLog(t, db, uuid.NewString(), int64(i), "x")
	}
	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}

func TestAuditRepository_StoreError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	if err := db.Migrator().DropTable(&LogEntryModel{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if err := repo.Append(ctx, &domain.LogEntry{Operation: domain.OperationEncrypt, Data: "x"}); err == nil {
		t.Error("expected Append error")
	}
	if _, err := repo.List(ctx, 5, 0); err == nil {
		t.Error("expected List error")
	}
	if _, err := repo.Count(ctx); err == nil {
		t.Error("expected Count error")
	}
}
