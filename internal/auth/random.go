package auth

import (
    "crypto/rand"
    "encoding/hex"
)

// NewInviteToken returns a cryptographically random token for evaluator
// feedback links.  32 bytes -> 64 hex chars; the token is stored verbatim
// and compared byte-for-byte, it is never interpreted.
func NewInviteToken() (string, error) {
    return randomHex(32)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
