// Package ethkey recognizes Ethereum key material and classifies key submissions.
package ethkey

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Kind is the structural format of a hex string.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrivateKey
	KindPublicKey
	KindAddress
)

func (k Kind) String() string {
	switch k {
	case KindPrivateKey:
		return "private key"
	case KindPublicKey:
		return "public key"
	case KindAddress:
		return "address"
	default:
		return "unknown"
	}
}

const (
	privateKeyLen       = 32
	publicKeyRawLen     = 64
	publicKeyPrefixLen  = 65
	publicKeyCompactLen = 33
	addressLen          = 20
)

// Normalize strips an optional 0x prefix and lowercases the hex digits.
func Normalize(s string) string {
	return strings.ToLower(stripPrefix(s))
}

func stripPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	return s
}

// Detect reports which kind of key material s is structurally. Mixed-case
// addresses must carry a valid EIP-55 checksum.
func Detect(s string) Kind {
	n := Normalize(s)
	raw, err := hex.DecodeString(n)
	if err != nil || len(raw) == 0 {
		return KindUnknown
	}
	switch len(raw) {
	case privateKeyLen:
		return KindPrivateKey
	case publicKeyRawLen:
		return KindPublicKey
	case publicKeyPrefixLen:
		if raw[0] == 0x04 {
			return KindPublicKey
		}
	case publicKeyCompactLen:
		if raw[0] == 0x02 || raw[0] == 0x03 {
			return KindPublicKey
		}
	case addressLen:
		body := stripPrefix(s)
		if isMixedCase(body) && ChecksumAddress(n)[2:] != body {
			return KindUnknown
		}
		return KindAddress
	}
	return KindUnknown
}

// ChecksumAddress returns the EIP-55 form of a 20-byte hex address.
func ChecksumAddress(addr string) string {
	n := Normalize(addr)
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(n))
	sum := h.Sum(nil)

	out := make([]byte, len(n))
	for i := 0; i < len(n); i++ {
		c := n[i]
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
