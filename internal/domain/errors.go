package domain

import "errors"

var (
	// ErrMissingInput は鍵またはデータが空の場合のエラー。
	ErrMissingInput = errors.New("key and data are required")

	// ErrInvalidKeyFormat は鍵テキストが指定された役割の鍵として解釈できない場合のエラー。
	ErrInvalidKeyFormat = errors.New("invalid key format")

	// ErrInvalidEncoding は暗号文がBase64として不正な場合のエラー。
	ErrInvalidEncoding = errors.New("invalid ciphertext encoding")

	// ErrCryptoOperationFailure は暗号化/復号処理そのものが失敗した場合のエラー。
	// 失敗理由（パディング不一致、鍵不一致、破損）は区別しない。
	ErrCryptoOperationFailure = errors.New("crypto operation failed")

	// ErrStoreUnavailable は監査ログのストアに到達できない場合のエラー。
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidPagination はsize/offsetが不正な場合のエラー。
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)
