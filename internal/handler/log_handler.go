package handler

import (
	"errors"
	"net/http"
	"strconv"

	"crypto-audit-service/internal/domain"
	"crypto-audit-service/internal/middleware"
	"crypto-audit-service/internal/usecase"
	"crypto-audit-service/pkg/httputil"
)

const (
	defaultPageSize   = 25
	defaultPageOffset = 0
)

// LogEntryResponse は監査ログ1件のレスポンス形式。
type LogEntryResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	IP        string `json:"ip"`
	Data      string `json:"data"`
}

// LogCountResponse は監査ログ件数のレスポンス形式。
type LogCountResponse struct {
	Total int64 `json:"total"`
}

// LogHandler は監査ログ参照のHTTPハンドラを提供する。
type LogHandler struct {
	service *usecase.AuditService
}

// NewLogHandler は新しいLogHandlerを生成する。
func NewLogHandler(service *usecase.AuditService) *LogHandler {
	return &LogHandler{service: service}
}

func parseNonNegative(raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.ErrInvalidPagination
	}
	return v, nil
}

// ListLogs は監査ログを古い順に返す。
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	origin := middleware.OriginAddress(r)

	size, err := parseNonNegative(r.URL.Query().Get("size"), defaultPageSize)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_PAGINATION", "size must be a non-negative integer")
		return
	}
	offset, err := parseNonNegative(r.URL.Query().Get("offset"), defaultPageOffset)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_PAGINATION", "offset must be a non-negative integer")
		return
	}

	entries, err := h.service.ListLogs(r.Context(), size, offset)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "LIST_LOGS", origin, "FAILED")
		if errors.Is(err, domain.ErrInvalidPagination) {
			httputil.Error(w, http.StatusBadRequest, "INVALID_PAGINATION", "size and offset must be non-negative integers")
			return
		}
		httputil.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "audit log store is unavailable")
		return
	}

	middleware.WriteAuditLog(r.Context(), "LIST_LOGS", origin, "SUCCESS")
	response := make([]LogEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = LogEntryResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			IP:        e.IP,
			Data:      e.Data,
		}
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CountLogs は監査ログの総件数を返す。
func (h *LogHandler) CountLogs(w http.ResponseWriter, r *http.Request) {
	origin := middleware.OriginAddress(r)

	total, err := h.service.CountLogs(r.Context())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "COUNT_LOGS", origin, "FAILED")
		httputil.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "audit log store is unavailable")
		return
	}

	middleware.WriteAuditLog(r.Context(), "COUNT_LOGS", origin, "SUCCESS")
	httputil.JSON(w, http.StatusOK, LogCountResponse{Total: total})
}
