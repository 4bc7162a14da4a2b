// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"crypto-audit-service/internal/cipher"
	"crypto-audit-service/internal/domain"
)

var tracer = otel.Tracer("crypto-audit-service/internal/usecase")

// AuditWriter は監査ログ書き込みのインターフェース。
type AuditWriter interface {
	Append(ctx context.Context, entry *domain.LogEntry) error
}

// CryptoService は鍵の解釈、暗号処理、監査ログ記録をまとめる。
type CryptoService struct {
	engine *cipher.Engine
	audit  AuditWriter
	policy *BestEffortPolicy
}

// NewCryptoService は新しいCryptoServiceを生成する。
func NewCryptoService(engine *cipher.Engine, audit AuditWriter) *CryptoService {
	return &CryptoService{
		engine: engine,
		audit:  audit,
		policy: &BestEffortPolicy{},
	}
}

// Encrypt は公開鍵で平文を暗号化し、Base64の暗号文を返す。
func (s *CryptoService) Encrypt(ctx context.Context, req domain.CipherRequest) (*domain.CipherResult, error) {
	ctx, span := tracer.Start(ctx, "CryptoService.Encrypt")
	defer span.End()
	span.SetAttributes(attribute.String("crypto.operation", string(domain.OperationEncrypt)))

	if req.Key == "" || req.Data == "" {
		return nil, domain.ErrMissingInput
	}

	pub, err := cipher.ParsePublicKey(req.Key)
	if err != nil {
		return nil, err
	}

	plaintext := []byte(req.Data)
	ciphertext, err := s.engine.Encrypt(pub, plaintext)
	memguard.WipeBytes(plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}

	result := &domain.CipherResult{Data: cipher.EncodeCiphertext(ciphertext)}
	outcome := s.record(ctx, domain.OperationEncrypt, req.Data, req.Origin)
	return s.policy.Resolve(ctx, domain.OperationEncrypt, result, outcome), nil
}

// Decrypt は秘密鍵でBase64の暗号文を復号し、平文を返す。
func (s *CryptoService) Decrypt(ctx context.Context, req domain.CipherRequest) (*domain.CipherResult, error) {
	ctx, span := tracer.Start(ctx, "CryptoService.Decrypt")
	defer span.End()
	span.SetAttributes(attribute.String("crypto.operation", string(domain.OperationDecrypt)))

	if req.Key == "" || req.Data == "" {
		return nil, domain.ErrMissingInput
	}

	priv, err := cipher.ParsePrivateKey(req.Key)
	if err != nil {
		return nil, err
	}

	ciphertext, err := cipher.DecodeCiphertext(req.Data)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.engine.Decrypt(priv, ciphertext)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(plaintext) {
		memguard.WipeBytes(plaintext)
		return nil, domain.ErrCryptoOperationFailure
	}
	result := &domain.CipherResult{Data: string(plaintext)}
	memguard.WipeBytes(plaintext)

	outcome := s.record(ctx, domain.OperationDecrypt, result.Data, req.Origin)
	return s.policy.Resolve(ctx, domain.OperationDecrypt, result, outcome), nil
}

// record は監査ログを1件書き込む。
// 呼び出し元が切断しても書き込みを完了させるため、キャンセルを伝搬させない。
func (s *CryptoService) record(ctx context.Context, op domain.Operation, plaintext, origin string) domain.LogWriteOutcome {
	if s.audit == nil {
		return domain.LogWriteOutcome{Err: domain.ErrStoreUnavailable}
	}
	entry := &domain.LogEntry{
		IP:        origin,
		Operation: op,
		Data:      plaintext,
	}
	if err := s.audit.Append(context.WithoutCancel(ctx), entry); err != nil {
		return domain.LogWriteOutcome{Err: fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)}
	}
	return domain.LogWriteOutcome{EntryID: entry.ID}
}
