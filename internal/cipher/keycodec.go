// Package cipher は鍵テキストの解釈とRSA-OAEPによる暗号化/復号を提供する。
package cipher

import (
	"crypto/rsa"
	"strings"

	"github.com/awnumar/memguard"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"

	"crypto-audit-service/internal/domain"
)

// ParsePublicKey は公開鍵テキスト（PEMまたはJWK）を解釈する。
// PEMはPKIX、PKCS#1、X.509証明書を受け付ける。
func ParsePublicKey(text string) (*rsa.PublicKey, error) {
	raw, err := keyBytes(text)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(raw)

	if isJWK(raw) {
		key, err := parseJWK(raw)
		if err != nil {
			return nil, err
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, domain.ErrInvalidKeyFormat
		}
		return pub, nil
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, domain.ErrInvalidKeyFormat
	}
	return pub, nil
}

// ParsePrivateKey は秘密鍵テキスト（PEMまたはJWK）を解釈する。
// PEMはPKCS#1とPKCS#8を受け付ける。パスフレーズ付きの鍵は扱わない。
func ParsePrivateKey(text string) (*rsa.PrivateKey, error) {
	raw, err := keyBytes(text)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(raw)

	if isJWK(raw) {
		key, err := parseJWK(raw)
		if err != nil {
			return nil, err
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok || priv.Validate() != nil {
			return nil, domain.ErrInvalidKeyFormat
		}
		return priv, nil
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, domain.ErrInvalidKeyFormat
	}
	if err := priv.Validate(); err != nil {
		return nil, domain.ErrInvalidKeyFormat
	}
	return priv, nil
}

func keyBytes(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.ErrMissingInput
	}
	return []byte(trimmed), nil
}

func isJWK(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func parseJWK(raw []byte) (interface{}, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, domain.ErrInvalidKeyFormat
	}
	if !jwk.Valid() {
		return nil, domain.ErrInvalidKeyFormat
	}
	return jwk.Key, nil
}
