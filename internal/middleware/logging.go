// Package middleware はHTTPミドルウェアと補助関数を提供する。
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"crypto-audit-service/internal/domain"
)

// WriteAuditLog は操作結果の運用ログを出力する。鍵やペイロードは含めない。
func WriteAuditLog(ctx context.Context, operation string, origin string, result string) {
	slog.InfoContext(ctx, "request completed",
		"operation", operation,
		"origin", origin,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// OriginAddress はリクエストの送信元アドレスを返す。取得できない場合は "-"。
// X-Forwarded-For などのヘッダーは偽装できるため参照しない。
func OriginAddress(r *http.Request) string {
	if r == nil || r.RemoteAddr == "" {
		return domain.UnknownOrigin
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return domain.UnknownOrigin
	}
	return host
}
