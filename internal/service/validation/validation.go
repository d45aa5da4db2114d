package validation

import (
	"regexp"
	"unicode/utf8"
)

var (
	walletPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	noncePattern     = regexp.MustCompile(`^[0-9a-f]{32}$`)
	signaturePattern = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)
	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
)

const (
	maxDisplayNameLen = 128
	maxMessageLen     = 4096
	maxPfpURLLen      = 2048
	// MaxScore keeps scores inside a signed 64-bit column and a uint256 token id.
	MaxScore = 1<<53 - 1
)

func ValidateWallet(address string) bool {
	return walletPattern.MatchString(address)
}

func ValidateNonce(nonce string) bool {
	return noncePattern.MatchString(nonce)
}

func ValidateSignature(signature string) bool {
	return signaturePattern.MatchString(signature)
}

func ValidateMessage(message string) bool {
	return message != "" && len(message) <= maxMessageLen
}

func ValidateScore(score int64) bool {
	return score >= 0 && score <= MaxScore
}

func ValidateFid(fid int64) bool {
	return fid > 0
}

// ValidateUsername accepts an empty username: profile fields are optional.
func ValidateUsername(username string) bool {
	return username == "" || usernamePattern.MatchString(username)
}

func ValidateDisplayName(name string) bool {
	return utf8.RuneCountInString(name) <= maxDisplayNameLen
}

func ValidatePfpURL(url string) bool {
	return len(url) <= maxPfpURLLen
}
