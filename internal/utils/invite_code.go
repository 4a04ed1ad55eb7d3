package utils

import "crypto/rand"

// Invitation codes use the full alphanumeric alphabet.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// maxUnbiasedByte is the largest byte value usable without skewing the
// alphabet: 248 = 4*62, so rejecting bytes at or above it keeps every
// character equally likely.
const maxUnbiasedByte = byte(256 / len(codeAlphabet) * len(codeAlphabet))

// NewInviteCode returns a random invitation code of the given length drawn
// uniformly from [0-9A-Za-z].
func NewInviteCode(length int) (string, error) {
	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= maxUnbiasedByte {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == length {
				break
			}
		}
	}
	return string(code), nil
}

// IsValidInviteCode reports whether code has the given length and contains
// only characters from [0-9A-Za-z].
func IsValidInviteCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			continue
		}
		return false
	}
	return true
}
