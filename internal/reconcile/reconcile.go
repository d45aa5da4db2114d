package reconcile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"go.uber.org/zap"
)

// debtMessage is the log line the mint flow writes when a claim landed but
// the local record did not.
const debtMessage = "Minted score not recorded"

// Debt is one minted score that may be missing locally. TxHash is empty when
// the score came from the command line rather than the chain log.
type Debt struct {
	Score  int64  `json:"score"`
	TxHash string `json:"tx_hash"`
}

type Report struct {
	AlreadyRecorded []int64 `json:"alreadyRecorded"`
	Backfilled      []int64 `json:"backfilled"`
	NotMinted       []int64 `json:"notMinted"`
	UnknownOwner    []int64 `json:"unknownOwner"`
	Failed          []int64 `json:"failed"`
}

type Reconciler struct {
	users    domain.UserRepository
	mints    domain.MintRepository
	chain    domain.ChainGateway
	enricher domain.AssetEnricher
}

func NewReconciler(users domain.UserRepository, mints domain.MintRepository, chain domain.ChainGateway, enricher domain.AssetEnricher) *Reconciler {
	return &Reconciler{
		users:    users,
		mints:    mints,
		chain:    chain,
		enricher: enricher,
	}
}

// Reconcile re-derives missing MintedScore rows from chain ownership. It
// never writes to the chain.
func (r *Reconciler) Reconcile(ctx context.Context, debts []Debt) Report {
	report := Report{}
	for _, debt := range dedupe(debts) {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, debt.Score)
			continue
		}
		r.reconcileOne(ctx, debt, &report)
	}
	return report
}

func (r *Reconciler) reconcileOne(ctx context.Context, debt Debt, report *Report) {
	log := logger.ChainLogger.With(zap.Int64("score", debt.Score))

	record, err := r.mints.GetByScore(ctx, debt.Score)
	if err != nil {
		log.Error("Reconcile lookup failed", zap.Error(err))
		report.Failed = append(report.Failed, debt.Score)
		return
	}
	if record != nil {
		report.AlreadyRecorded = append(report.AlreadyRecorded, debt.Score)
		return
	}

	owner, err := r.chain.OwnerOf(ctx, debt.Score)
	if errors.Is(err, domain.ErrTokenNotFound) {
		report.NotMinted = append(report.NotMinted, debt.Score)
		return
	}
	if err != nil {
		log.Error("Reconcile owner read failed", zap.Error(err))
		report.Failed = append(report.Failed, debt.Score)
		return
	}

	user, err := r.users.GetByWallet(ctx, owner)
	if errors.Is(err, domain.ErrUserNotFound) {
		log.Warn("Minted score owner has no local user", zap.String("owner", owner))
		report.UnknownOwner = append(report.UnknownOwner, debt.Score)
		return
	}
	if err != nil {
		log.Error("Reconcile user lookup failed", zap.Error(err))
		report.Failed = append(report.Failed, debt.Score)
		return
	}

	err = r.mints.CreateMintedScore(ctx, &domain.MintedScore{
		Score:    debt.Score,
		UserID:   user.UUID,
		TxHash:   debt.TxHash,
		ImageURL: r.enricher.Enrich(ctx, debt.Score, user),
	})
	switch {
	case err == nil:
		log.Info("Minted score backfilled", zap.String("user_id", user.UUID), zap.String("tx_hash", debt.TxHash))
		report.Backfilled = append(report.Backfilled, debt.Score)
	case errors.Is(err, domain.ErrScoreAlreadyRecorded):
		report.AlreadyRecorded = append(report.AlreadyRecorded, debt.Score)
	default:
		log.Error("Backfill insert failed", zap.Error(err))
		report.Failed = append(report.Failed, debt.Score)
	}
}

// ParseDebtLog extracts reconciliation debts from a chain log written by zap.
// Lines that are not debt entries are skipped.
func ParseDebtLog(reader io.Reader) ([]Debt, error) {
	var debts []Debt
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		var entry struct {
			Msg    string `json:"msg"`
			Score  *int64 `json:"score"`
			TxHash string `json:"tx_hash"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.Msg != debtMessage {
			continue
		}
		if entry.Score == nil {
			return nil, fmt.Errorf("line %d: debt entry without score", line)
		}
		debts = append(debts, Debt{Score: *entry.Score, TxHash: entry.TxHash})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chain log: %w", err)
	}
	return debts, nil
}

// dedupe keeps one debt per score, preferring an entry that carries a tx hash,
// and orders them by score.
func dedupe(debts []Debt) []Debt {
	byScore := make(map[int64]Debt, len(debts))
	for _, debt := range debts {
		if existing, ok := byScore[debt.Score]; ok && existing.TxHash != "" {
			continue
		}
		byScore[debt.Score] = debt
	}
	out := make([]Debt, 0, len(byScore))
	for _, debt := range byScore {
		out = append(out, debt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}
