package domain

// Operation は監査ログに記録する操作種別を表す。
type Operation string

const (
	// OperationEncrypt は暗号化操作を表す。
	OperationEncrypt Operation = "encrypt"
	// OperationDecrypt は復号操作を表す。
	OperationDecrypt Operation = "decrypt"
)

// UnknownOrigin は送信元アドレスが取得できない場合の値。
const UnknownOrigin = "-"

// LogEntry は監査ログの1レコードを表す。一度書き込まれた後は変更されない。
type LogEntry struct {
	ID        string
	Timestamp int64 // UNIX秒
	IP        string
	Operation Operation
	Data      string // 平文（鍵・暗号文は含まない）
}

// LogWriteOutcome は監査ログ書き込みの結果を表す。
// 暗号処理の結果とは独立しており、失敗しても呼び出し元のレスポンスには影響しない。
type LogWriteOutcome struct {
	EntryID string
	Err     error
}

// Failed は書き込みが失敗したかどうかを返す。
func (o LogWriteOutcome) Failed() bool {
	return o.Err != nil
}
