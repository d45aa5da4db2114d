package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"sync"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const scoreNFTABI = `[
{"type":"function","name":"mintScore","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"score","type":"uint256"}],"outputs":[]},
{"type":"function","name":"isScoreMinted","stateMutability":"view","inputs":[{"name":"score","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

type Config struct {
	RPCURL          string
	ChainID         int64
	ContractAddress string
	PrivateKey      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type txSender interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// Gateway talks to the score NFT contract. Claims are signed locally before
// submission so the tx hash is known even when the node never answers.
type Gateway struct {
	contract     boundContract
	sender       txSender
	auth         *bind.TransactOpts
	readTimeout  time.Duration
	writeTimeout time.Duration
	closer       func()

	mu          sync.Mutex
	nonce       uint64
	nonceLoaded bool
}

func Dial(ctx context.Context, cfg Config) (*Gateway, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	key, err := crypto.HexToECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(scoreNFTABI))
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}
	contract := bind.NewBoundContract(common.HexToAddress(cfg.ContractAddress), parsed, client, client, client)

	g := newGateway(contract, client, auth, cfg.ReadTimeout, cfg.WriteTimeout)
	g.closer = client.Close
	logger.ChainLogger.Info("Chain gateway ready",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("contract", cfg.ContractAddress),
		zap.String("minter", auth.From.Hex()),
	)
	return g, nil
}

func newGateway(contract boundContract, sender txSender, auth *bind.TransactOpts, readTimeout, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		contract:     contract,
		sender:       sender,
		auth:         auth,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (g *Gateway) Close() {
	if g.closer != nil {
		g.closer()
	}
}

func (g *Gateway) IsClaimed(ctx context.Context, score int64) (bool, error) {
	requestID := middleware.GetRequestID(ctx)
	ctx, cancel := context.WithTimeout(ctx, g.readTimeout)
	defer cancel()

	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isScoreMinted", big.NewInt(score)); err != nil {
		logger.ChainLogger.Warn("isScoreMinted failed",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w: isScoreMinted: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%w: isScoreMinted returned %d values", domain.ErrUpstreamUnavailable, len(out))
	}
	claimed, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: isScoreMinted returned %T", domain.ErrUpstreamUnavailable, out[0])
	}
	return claimed, nil
}

// OwnerOf returns the lowercase owner address of the score token.
func (g *Gateway) OwnerOf(ctx context.Context, score int64) (string, error) {
	requestID := middleware.GetRequestID(ctx)
	ctx, cancel := context.WithTimeout(ctx, g.readTimeout)
	defer cancel()

	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", big.NewInt(score)); err != nil {
		if isRevert(err) {
			return "", domain.ErrTokenNotFound
		}
		logger.ChainLogger.Warn("ownerOf failed",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: ownerOf: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(out) != 1 {
		return "", fmt.Errorf("%w: ownerOf returned %d values", domain.ErrUpstreamUnavailable, len(out))
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("%w: ownerOf returned %T", domain.ErrUpstreamUnavailable, out[0])
	}
	if owner == (common.Address{}) {
		return "", domain.ErrTokenNotFound
	}
	return strings.ToLower(owner.Hex()), nil
}

// Claim mints the score token to the given address. Submission is never
// retried here: a second attempt would be a second transaction.
func (g *Gateway) Claim(ctx context.Context, score int64, to string) (string, error) {
	requestID := middleware.GetRequestID(ctx)
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("%w: bad recipient %q", domain.ErrChainWriteFailed, to)
	}
	ctx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()

	nonce, err := g.nextNonce(ctx)
	if err != nil {
		logger.ChainLogger.Error("Failed to fetch minter nonce", zap.String("request_id", requestID), zap.Error(err))
		return "", fmt.Errorf("%w: nonce: %v", domain.ErrChainWriteFailed, err)
	}

	opts := *g.auth
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(nonce)
	opts.NoSend = true

	tx, err := g.contract.Transact(&opts, "mintScore", common.HexToAddress(to), big.NewInt(score))
	if err != nil {
		g.resetNonce()
		logger.ChainLogger.Error("Failed to build mint transaction",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		return "", writeFailed(err)
	}
	txHash := tx.Hash().Hex()

	err = g.sender.SendTransaction(ctx, tx)
	switch {
	case err == nil, isAlreadyKnown(err):
		logger.ChainLogger.Info("Mint transaction submitted",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("to", to),
			zap.String("tx_hash", txHash),
			zap.Uint64("nonce", nonce),
		)
		return txHash, nil
	case isUnsettled(err):
		// The node may never have seen the tx. Reload from its pending count
		// so a lost nonce does not leave a gap that stalls every later claim.
		g.resetNonce()
		logger.ChainLogger.Warn("Mint submission outcome unknown",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("tx_hash", txHash),
			zap.Uint64("nonce", nonce),
			zap.Error(err),
		)
		return txHash, fmt.Errorf("%w: %v", domain.ErrChainOutcomeUnknown, err)
	default:
		g.resetNonce()
		logger.ChainLogger.Error("Mint submission rejected",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.String("tx_hash", txHash),
			zap.Error(err),
		)
		return "", writeFailed(err)
	}
}

// writeFailed marks a terminal write error, flagging contract reverts so the
// caller can tell a lost race from a broken node.
func writeFailed(err error) error {
	if isRevert(err) {
		return fmt.Errorf("%w: %w: %v", domain.ErrChainWriteFailed, domain.ErrChainReverted, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrChainWriteFailed, err)
}

func (g *Gateway) nextNonce(ctx context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nonceLoaded {
		n, err := g.sender.PendingNonceAt(ctx, g.auth.From)
		if err != nil {
			return 0, err
		}
		g.nonce = n
		g.nonceLoaded = true
	}
	n := g.nonce
	g.nonce++
	return n, nil
}

// resetNonce forces the next claim to reload the pending nonce from the node.
func (g *Gateway) resetNonce() {
	g.mu.Lock()
	g.nonceLoaded = false
	g.mu.Unlock()
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

func isAlreadyKnown(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already known")
}

// isUnsettled reports send errors after which the tx may or may not have
// reached the node.
func isUnsettled(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
