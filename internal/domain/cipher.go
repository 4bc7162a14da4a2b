// Package domain はドメインモデルとビジネスルールを定義する。
package domain

// CipherRequest は暗号化/復号リクエストを表す。
// 鍵の役割はエンドポイントで決まる（encrypt=公開鍵、decrypt=秘密鍵）。
type CipherRequest struct {
	Key    string
	Data   string
	Origin string
}

// CipherResult は暗号化/復号の結果を表す。
// 暗号化の場合はBase64エンコード済み暗号文、復号の場合は平文。
type CipherResult struct {
	Data string
}
