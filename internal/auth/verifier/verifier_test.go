package verifier

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"testing"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCustody struct {
	address common.Address
	err     error
}

func (s stubCustody) CustodyOf(context.Context, int64) (common.Address, error) {
	return s.address, s.err
}

const testDomain = "game.example.com"

func buildMessage(address common.Address, nonce string, fid int64, expires string) string {
	msg := fmt.Sprintf(`%s wants you to sign in with your Ethereum account:
%s

Farcaster Auth

URI: https://%s/login
Version: 1
Chain ID: 10
Nonce: %s
Issued At: 2026-10-15T11:59:00Z`, testDomain, address.Hex(), testDomain, nonce)
	if expires != "" {
		msg += "\nExpiration Time: " + expires
	}
	msg += fmt.Sprintf("\nResources:\n- farcaster://fid/%d", fid)
	return msg
}

func sign(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func newTestVerifier(custody CustodyReader) *farcasterVerifier {
	return &farcasterVerifier{
		custody: custody,
		timeout: time.Second,
		now:     func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestVerify(t *testing.T) {
	logger.ChainLogger = zap.NewNop()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)
	nonce := "0123456789abcdef0123456789abcdef"
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")

		fid, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: nonce, Domain: testDomain})
		require.NoError(t, err)
		assert.Equal(t, int64(1234), fid)
	})

	t.Run("Wrong Domain", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: nonce, Domain: "evil.example.com"})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Nonce Mismatch", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: "ffffffffffffffffffffffffffffffff", Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Expired", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "2026-10-15T11:59:30Z")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Signed By Someone Else", func(t *testing.T) {
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")

		_, err = v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, other, message), Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Tampered Message", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")
		signature := sign(t, key, message)

		_, err := v.Verify(ctx, domain.SignInRequest{Message: buildMessage(address, nonce, 1, ""), Signature: signature, Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Signer Does Not Hold Fid", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: common.HexToAddress("0x00000000000000000000000000000000000000aa")})
		message := buildMessage(address, nonce, 1234, "")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Registry Unreachable", func(t *testing.T) {
		v := newTestVerifier(stubCustody{err: errors.New("dial tcp: i/o timeout")})
		message := buildMessage(address, nonce, 1234, "")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: sign(t, key, message), Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.NotErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("Garbage Signature", func(t *testing.T) {
		v := newTestVerifier(stubCustody{address: address})
		message := buildMessage(address, nonce, 1234, "")

		_, err := v.Verify(ctx, domain.SignInRequest{Message: message, Signature: "0x1234", Nonce: nonce, Domain: testDomain})
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})
}

func TestParseMessage(t *testing.T) {
	address := common.HexToAddress("0x52908400098527886E0F7030069857D2E4169EE7")

	t.Run("Fields", func(t *testing.T) {
		msg, err := ParseMessage(buildMessage(address, "abc", 77, "2026-10-16T00:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, testDomain, msg.Domain)
		assert.Equal(t, address.Hex(), msg.Address)
		assert.Equal(t, "abc", msg.Nonce)
		assert.Equal(t, int64(10), msg.ChainID)
		require.NotNil(t, msg.ExpirationTime)

		fid, err := msg.Fid()
		require.NoError(t, err)
		assert.Equal(t, int64(77), fid)
	})

	t.Run("Not A Sign-In Message", func(t *testing.T) {
		_, err := ParseMessage("hello world")
		assert.Error(t, err)
		assert.Empty(t, NonceOf("hello world"))
	})

	t.Run("No Fid", func(t *testing.T) {
		msg, err := ParseMessage(testDomain + headerSuffix + "\n" + address.Hex() + "\n\nNonce: abc")
		require.NoError(t, err)
		_, err = msg.Fid()
		assert.Error(t, err)
	})

	t.Run("Nonce Extraction", func(t *testing.T) {
		assert.Equal(t, "abc", NonceOf(buildMessage(address, "abc", 1, "")))
	})
}
