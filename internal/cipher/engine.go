package cipher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"hash"
	"io"

	"crypto-audit-service/internal/domain"
)

// Engine はRSA-OAEPによる暗号化/復号を行う。
// 暗号化と復号で同じハッシュ関数を使う必要がある。
type Engine struct {
	newHash func() hash.Hash
	random  io.Reader
}

// NewEngine はSHA-256を用いるEngineを生成する。
func NewEngine() *Engine {
	return &Engine{
		newHash: sha256.New,
		random:  rand.Reader,
	}
}

// Encrypt は公開鍵で平文を暗号化する。
func (e *Engine) Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if pub == nil {
		return nil, domain.ErrCryptoOperationFailure
	}
	ciphertext, err := rsa.EncryptOAEP(e.newHash(), e.random, pub, plaintext, nil)
	if err != nil {
		return nil, domain.ErrCryptoOperationFailure
	}
	return ciphertext, nil
}

// Decrypt は秘密鍵で暗号文を復号する。
// 失敗理由に関わらず ErrCryptoOperationFailure のみを返す。
func (e *Engine) Decrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	if priv == nil {
		return nil, domain.ErrCryptoOperationFailure
	}
	plaintext, err := rsa.DecryptOAEP(e.newHash(), e.random, priv, ciphertext, nil)
	if err != nil {
		return nil, domain.ErrCryptoOperationFailure
	}
	return plaintext, nil
}

// EncodeCiphertext は暗号文を標準Base64に変換する。
func EncodeCiphertext(ciphertext []byte) string {
	return base64.StdEncoding.EncodeToString(ciphertext)
}

// DecodeCiphertext は標準Base64の暗号文をバイト列に戻す。
func DecodeCiphertext(text string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(text)
	if err != nil || len(ciphertext) == 0 {
		return nil, domain.ErrInvalidEncoding
	}
	return ciphertext, nil
}
