// Package handler はHTTPハンドラを提供する。
package handler

import (
	"errors"
	"net/http"

	"crypto-audit-service/internal/domain"
	"crypto-audit-service/internal/middleware"
	"crypto-audit-service/internal/usecase"
	"crypto-audit-service/pkg/httputil"
)

// CipherRequest は暗号化/復号リクエストの形式。
type CipherRequest struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

// CipherResponse は暗号化/復号レスポンスの形式。
type CipherResponse struct {
	Data string `json:"data"`
}

// CryptoHandler は暗号化/復号のHTTPハンドラを提供する。
type CryptoHandler struct {
	service *usecase.CryptoService
}

// NewCryptoHandler は新しいCryptoHandlerを生成する。
func NewCryptoHandler(service *usecase.CryptoService) *CryptoHandler {
	return &CryptoHandler{service: service}
}

// Encrypt は公開鍵で平文を暗号化する。
func (h *CryptoHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	origin := middleware.OriginAddress(r)

	var body CipherRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a JSON object with key and data")
		return
	}

	result, err := h.service.Encrypt(r.Context(), domain.CipherRequest{
		Key:    body.Key,
		Data:   body.Data,
		Origin: origin,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "ENCRYPT", origin, "FAILED")
		switch {
		case errors.Is(err, domain.ErrMissingInput):
			httputil.Error(w, http.StatusBadRequest, "MISSING_INPUT", "key and data are required")
		case errors.Is(err, domain.ErrInvalidKeyFormat):
			httputil.Error(w, http.StatusBadRequest, "INVALID_KEY", "invalid public key (PEM or JWK expected)")
		default:
			httputil.Error(w, http.StatusInternalServerError, "ENCRYPTION_FAILED", "encryption failed")
		}
		return
	}

	middleware.WriteAuditLog(r.Context(), "ENCRYPT", origin, "SUCCESS")
	httputil.JSON(w, http.StatusOK, CipherResponse{Data: result.Data})
}

// Decrypt は秘密鍵で暗号文を復号する。
// 復号の失敗は呼び出し元の入力の問題として400を返す。
func (h *CryptoHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	origin := middleware.OriginAddress(r)

	var body CipherRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a JSON object with key and data")
		return
	}

	result, err := h.service.Decrypt(r.Context(), domain.CipherRequest{
		Key:    body.Key,
		Data:   body.Data,
		Origin: origin,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "DECRYPT", origin, "FAILED")
		switch {
		case errors.Is(err, domain.ErrMissingInput):
			httputil.Error(w, http.StatusBadRequest, "MISSING_INPUT", "key and data are required")
		case errors.Is(err, domain.ErrInvalidKeyFormat):
			httputil.Error(w, http.StatusBadRequest, "INVALID_KEY", "invalid private key (PEM or JWK expected)")
		case errors.Is(err, domain.ErrInvalidEncoding):
			httputil.Error(w, http.StatusBadRequest, "INVALID_ENCODING", "encrypted data is not valid base64")
		case errors.Is(err, domain.ErrCryptoOperationFailure):
			httputil.Error(w, http.StatusBadRequest, "DECRYPTION_FAILED", "decryption failed: invalid token or key")
		default:
			httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	middleware.WriteAuditLog(r.Context(), "DECRYPT", origin, "SUCCESS")
	httputil.JSON(w, http.StatusOK, CipherResponse{Data: result.Data})
}
