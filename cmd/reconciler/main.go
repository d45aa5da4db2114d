package main

import (
	"context"
	"fmt"
	"os"

	"scoremint/domain"
	authRepository "scoremint/internal/auth/repository"
	"scoremint/internal/chain"
	"scoremint/internal/enrich"
	mintRepository "scoremint/internal/mint/repository"
	"scoremint/internal/reconcile"
	"scoremint/internal/service/config"
	"scoremint/internal/service/dsn"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	userRepository "scoremint/internal/users/repository"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := logger.InitLoggers(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize loggers: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.SyncLoggers() }()

	if err := NewRootCommand(envBackend()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.SyncLoggers()
		os.Exit(1)
	}
}

// envBackend opens the real stores lazily so each command connects only to
// what it uses.
func envBackend() Backend {
	return Backend{
		Reconciler: func(ctx context.Context) (DebtReconciler, func(), error) {
			cfg, err := config.FromEnv()
			if err != nil {
				return nil, nil, err
			}
			db := middleware.DbConnect(dsn.FromEnv())
			gateway, err := chain.Dial(ctx, chain.Config{
				RPCURL:          cfg.ChainRPCURL,
				ChainID:         cfg.ChainID,
				ContractAddress: cfg.ContractAddress,
				PrivateKey:      cfg.PrivateKey,
				ReadTimeout:     cfg.ChainReadTimeout,
				WriteTimeout:    cfg.ChainWriteTimeout,
			})
			if err != nil {
				return nil, nil, err
			}
			enricher, err := enrich.FromConfig(ctx, cfg)
			if err != nil {
				gateway.Close()
				return nil, nil, err
			}
			r := reconcile.NewReconciler(
				userRepository.NewUserRepository(db),
				mintRepository.NewMintRepository(db),
				gateway,
				enricher,
			)
			return r, gateway.Close, nil
		},
		Nonces: func(ctx context.Context) (domain.NonceStore, error) {
			cfg, err := config.FromEnv()
			if err != nil {
				return nil, err
			}
			db := middleware.DbConnect(dsn.FromEnv())
			return authRepository.NewNonceRepository(db, cfg.NonceTTL), nil
		},
	}
}
