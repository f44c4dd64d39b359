package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// requestFingerprint детерминированный отпечаток запроса для реестра
// идемпотентности: один и тот же ключ с другим набором полей — конфликт,
// а не повтор.
func requestFingerprint(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
