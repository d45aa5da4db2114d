package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"scoremint/domain"
)

// Farcaster IdRegistry on Optimism.
const defaultIDRegistryAddress = "0x00000000Fc6c5F01Fc30151999387Bb99A9f489b"

const defaultPlaceholderImage = "https://placehold.co/512x512/png?text=Score"

type Config struct {
	JWTSecret   string
	BackendURL  string
	FrontendURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ChainRPCURL       string
	ChainID           int64
	ContractAddress   string
	PrivateKey        string
	ClaimCheckPolicy  domain.ClaimCheckPolicy
	ChainReadTimeout  time.Duration
	ChainWriteTimeout time.Duration

	IDRegistryRPCURL  string
	IDRegistryAddress string
	AuthDomain        string
	AllowSilentLogin  bool
	VerifyTimeout     time.Duration
	NonceTTL          time.Duration
	SessionTTL        time.Duration

	GeneratorURL        string
	GeneratorToken      string
	EnrichTimeout       time.Duration
	PlaceholderImageURL string
	R2AccountID         string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2Bucket            string
	CDNBaseURL          string
}

func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		JWTSecret:   os.Getenv("JWT_SECRET"),
		BackendURL:  getOr("BACKEND_URL", ":8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),

		RedisAddr:     os.Getenv("REDIS_ENDPOINT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ChainRPCURL:      os.Getenv("CHAIN_RPC_URL"),
		ContractAddress:  os.Getenv("CONTRACT_ADDRESS"),
		PrivateKey:       strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x"),
		ClaimCheckPolicy: domain.ClaimCheckPolicy(getOr("CLAIM_CHECK_POLICY", string(domain.AvailabilityBiasedCheck))),

		IDRegistryRPCURL:  os.Getenv("ID_REGISTRY_RPC_URL"),
		IDRegistryAddress: getOr("ID_REGISTRY_ADDRESS", defaultIDRegistryAddress),
		AuthDomain:        os.Getenv("AUTH_DOMAIN"),

		GeneratorURL:        os.Getenv("GENERATOR_URL"),
		GeneratorToken:      os.Getenv("GENERATOR_TOKEN"),
		PlaceholderImageURL: getOr("PLACEHOLDER_IMAGE_URL", defaultPlaceholderImage),
		R2AccountID:         os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:   os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:            os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:          os.Getenv("CDN_BASE_URL"),
	}

	cfg.RedisDB, errs = parseInt("REDIS_DB", 0, errs)
	var chainID int
	chainID, errs = parseInt("CHAIN_ID", 84532, errs)
	cfg.ChainID = int64(chainID)

	cfg.AllowSilentLogin, errs = parseBool("AUTH_ALLOW_SILENT", true, errs)

	cfg.ChainReadTimeout, errs = parseDuration("CHAIN_READ_TIMEOUT", 5*time.Second, errs)
	cfg.ChainWriteTimeout, errs = parseDuration("CHAIN_WRITE_TIMEOUT", 30*time.Second, errs)
	cfg.VerifyTimeout, errs = parseDuration("VERIFY_TIMEOUT", 10*time.Second, errs)
	cfg.EnrichTimeout, errs = parseDuration("ENRICH_TIMEOUT", 8*time.Second, errs)
	cfg.NonceTTL, errs = parseDuration("NONCE_TTL", 10*time.Minute, errs)
	cfg.SessionTTL, errs = parseDuration("SESSION_TTL", 7*24*time.Hour, errs)

	switch cfg.ClaimCheckPolicy {
	case domain.AvailabilityBiasedCheck, domain.StrictCheck:
	default:
		errs = append(errs, fmt.Errorf("CLAIM_CHECK_POLICY: unknown policy %q", cfg.ClaimCheckPolicy))
	}

	return cfg, errors.Join(errs...)
}

// RequireServer reports the settings the web server cannot start without.
func (c Config) RequireServer() error {
	var errs []error
	required := map[string]string{
		"JWT_SECRET":          c.JWTSecret,
		"CHAIN_RPC_URL":       c.ChainRPCURL,
		"CONTRACT_ADDRESS":    c.ContractAddress,
		"PRIVATE_KEY":         c.PrivateKey,
		"ID_REGISTRY_RPC_URL": c.IDRegistryRPCURL,
		"AUTH_DOMAIN":         c.AuthDomain,
	}
	for _, key := range []string{"JWT_SECRET", "CHAIN_RPC_URL", "CONTRACT_ADDRESS", "PRIVATE_KEY", "ID_REGISTRY_RPC_URL", "AUTH_DOMAIN"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s environment variable not set", key))
		}
	}
	return errors.Join(errs...)
}

func (c Config) ImageStorageEnabled() bool {
	return c.R2AccountID != "" && c.R2Bucket != ""
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int, errs []error) (int, []error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, errs
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return v, errs
}

func parseBool(key string, fallback bool, errs []error) (bool, []error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, errs
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return v, errs
}

func parseDuration(key string, fallback time.Duration, errs []error) (time.Duration, []error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, errs
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return v, errs
}
