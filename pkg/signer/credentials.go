package signer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateCredentials 生成一对 API Key 与签名密钥。
// API Key 可公开传输，密钥仅在签发时返回一次。
func GenerateCredentials() (apiKey, secret string, err error) {
	apiKey = "cek_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate signing secret: %w", err)
	}
	return apiKey, hex.EncodeToString(buf), nil
}
