package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWallet(t *testing.T) {
	assert.True(t, ValidateWallet("0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.True(t, ValidateWallet("0xde709f2102306220921060314715629080e2fb77"))
	assert.False(t, ValidateWallet("52908400098527886E0F7030069857D2E4169EE7"))
	assert.False(t, ValidateWallet("0x1234"))
	assert.False(t, ValidateWallet("0xZZ908400098527886E0F7030069857D2E4169EE7"))
}

func TestValidateNonce(t *testing.T) {
	assert.True(t, ValidateNonce(strings.Repeat("a1", 16)))
	assert.False(t, ValidateNonce(strings.Repeat("A1", 16)))
	assert.False(t, ValidateNonce("abc"))
}

func TestValidateScore(t *testing.T) {
	assert.True(t, ValidateScore(0))
	assert.True(t, ValidateScore(1337))
	assert.False(t, ValidateScore(-1))
	assert.False(t, ValidateScore(MaxScore+1))
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername(""))
	assert.True(t, ValidateUsername("dwr.eth"))
	assert.False(t, ValidateUsername("<script>"))
	assert.False(t, ValidateUsername(strings.Repeat("a", 65)))
}

func TestValidateSignature(t *testing.T) {
	assert.True(t, ValidateSignature("0x"+strings.Repeat("ab", 65)))
	assert.False(t, ValidateSignature(strings.Repeat("ab", 65)))
	assert.False(t, ValidateSignature("0x"+strings.Repeat("ab", 64)))
}
