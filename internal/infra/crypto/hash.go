package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

func SHA256Hex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}
