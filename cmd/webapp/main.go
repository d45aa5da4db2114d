package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scoremint/domain"
	authController "scoremint/internal/auth/controller"
	authRepository "scoremint/internal/auth/repository"
	authUsecase "scoremint/internal/auth/usecase"
	"scoremint/internal/auth/verifier"
	"scoremint/internal/chain"
	"scoremint/internal/enrich"
	leaderboardController "scoremint/internal/leaderboard/controller"
	leaderboardRepository "scoremint/internal/leaderboard/repository"
	leaderboardUsecase "scoremint/internal/leaderboard/usecase"
	mintController "scoremint/internal/mint/controller"
	mintRepository "scoremint/internal/mint/repository"
	mintUsecase "scoremint/internal/mint/usecase"
	runsController "scoremint/internal/runs/controller"
	runsRepository "scoremint/internal/runs/repository"
	runsUsecase "scoremint/internal/runs/usecase"
	"scoremint/internal/service/config"
	"scoremint/internal/service/dsn"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"
	"scoremint/internal/service/router"
	"scoremint/internal/service/scheduler"
	usersController "scoremint/internal/users/controller"
	usersRepository "scoremint/internal/users/repository"
	usersUsecase "scoremint/internal/users/usecase"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
)

const nonceSweepInterval = 5 * time.Minute

func main() {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.RequireServer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.InitLoggers(); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}
	defer func() {
		if err := logger.SyncLoggers(); err != nil {
			log.Printf("Failed to sync loggers: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := middleware.DbConnect(dsn.FromEnv())
	redisClient, err := middleware.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	jobs, err := scheduler.New()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	var nonces domain.NonceStore
	var scoreLock domain.ScoreLock
	if redisClient != nil {
		defer redisClient.Close()
		nonces = authRepository.NewRedisNonceStore(redisClient, cfg.NonceTTL)
		scoreLock = mintRepository.NewRedisScoreLock(redisClient, 2*cfg.ChainWriteTimeout)
	} else {
		nonces = authRepository.NewNonceRepository(db, cfg.NonceTTL)
		if err := jobs.AddNonceSweep(nonces, nonceSweepInterval); err != nil {
			log.Fatalf("Failed to schedule nonce sweep: %v", err)
		}
		log.Println("Redis not configured, nonces kept in Postgres")
	}

	jwtToken, err := middleware.NewJwtToken(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to create JWT token: %v", err)
	}

	gateway, err := chain.Dial(ctx, chain.Config{
		RPCURL:          cfg.ChainRPCURL,
		ChainID:         cfg.ChainID,
		ContractAddress: cfg.ContractAddress,
		PrivateKey:      cfg.PrivateKey,
		ReadTimeout:     cfg.ChainReadTimeout,
		WriteTimeout:    cfg.ChainWriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to chain: %v", err)
	}
	defer gateway.Close()

	registryClient, err := ethclient.DialContext(ctx, cfg.IDRegistryRPCURL)
	if err != nil {
		log.Fatalf("Failed to connect to ID registry RPC: %v", err)
	}
	defer registryClient.Close()
	custody, err := verifier.NewIDRegistry(cfg.IDRegistryAddress, registryClient)
	if err != nil {
		log.Fatalf("Failed to bind ID registry: %v", err)
	}
	identityVerifier := verifier.NewFarcasterVerifier(custody, cfg.VerifyTimeout)

	enricher, err := enrich.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up image storage: %v", err)
	}

	userRepo := usersRepository.NewUserRepository(db)

	authUseCase := authUsecase.NewAuthUsecase(authRepository.NewAuthRepository(db), nonces, identityVerifier, jwtToken, authUsecase.Options{
		Domain:           cfg.AuthDomain,
		SessionTTL:       cfg.SessionTTL,
		AllowSilentLogin: cfg.AllowSilentLogin,
	})
	userUseCase := usersUsecase.NewUserUsecase(userRepo)
	runUseCase := runsUsecase.NewRunUsecase(runsRepository.NewRunRepository(db))
	mintUseCase := mintUsecase.NewMintUsecase(userRepo, mintRepository.NewMintRepository(db), gateway, enricher, scoreLock, cfg.ClaimCheckPolicy)
	leaderboardUseCase := leaderboardUsecase.NewLeaderboardUsecase(leaderboardRepository.NewLeaderboardRepository(db))

	mainRouter := router.SetUpRoutes(router.Handlers{
		Auth:        authController.NewAuthHandler(authUseCase),
		Users:       usersController.NewUserHandler(userUseCase),
		Runs:        runsController.NewRunHandler(runUseCase),
		Mint:        mintController.NewMintHandler(mintUseCase),
		Leaderboard: leaderboardController.NewLeaderboardHandler(leaderboardUseCase),
	}, jwtToken)

	server := &http.Server{
		Addr:              cfg.BackendURL,
		Handler:           middleware.EnableCORS(cfg.FrontendURL, mainRouter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// mint requests wait on the chain write
		WriteTimeout: cfg.ChainWriteTimeout + cfg.EnrichTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	jobs.Start()
	go func() {
		fmt.Printf("Starting HTTP server on address %s\n", cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Error on starting server: %s", err)
			stop()
		}
	}()

	<-ctx.Done()
	fmt.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := jobs.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
}
