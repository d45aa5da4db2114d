package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scoremint/domain"
	"scoremint/internal/service/config"
	"scoremint/internal/service/logger"
	"scoremint/internal/service/middleware"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type enricher struct {
	generator   ImageGenerator
	store       ObjectStore
	placeholder string
	timeout     time.Duration
}

// NewEnricher returns an AssetEnricher that renders and stores a score image.
// A nil generator or store disables rendering and every call yields the placeholder.
func NewEnricher(generator ImageGenerator, store ObjectStore, placeholder string, timeout time.Duration) domain.AssetEnricher {
	return &enricher{
		generator:   generator,
		store:       store,
		placeholder: placeholder,
		timeout:     timeout,
	}
}

func (e *enricher) Enrich(ctx context.Context, score int64, owner *domain.User) string {
	if e.generator == nil || e.store == nil {
		return e.placeholder
	}
	requestID := middleware.GetRequestID(ctx)
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := ImageRequest{Score: score}
	if owner != nil {
		req.Username = deref(owner.Username)
		req.DisplayName = deref(owner.DisplayName)
		req.PfpURL = deref(owner.PfpURL)
	}

	data, contentType, err := e.generator.Generate(ctx, req)
	if err != nil {
		logger.ChainLogger.Warn("Image generation failed, using placeholder",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		return e.placeholder
	}

	url, err := e.store.Put(ctx, objectKey(score, owner, contentType), data, contentType)
	if err != nil {
		logger.ChainLogger.Warn("Image upload failed, using placeholder",
			zap.String("request_id", requestID),
			zap.Int64("score", score),
			zap.Error(err),
		)
		return e.placeholder
	}
	return url
}

func objectKey(score int64, owner *domain.User, contentType string) string {
	name := "score"
	if owner != nil {
		if s := slug.Make(owner.Name()); s != "" {
			name = s
		}
	}
	return fmt.Sprintf("scores/%d-%s%s", score, name, extension(contentType))
}

func extension(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FromConfig wires the generator and the R2 store when they are configured.
// Missing pieces leave the enricher on the placeholder.
func FromConfig(ctx context.Context, cfg config.Config) (domain.AssetEnricher, error) {
	var generator ImageGenerator
	if cfg.GeneratorURL != "" {
		generator = NewHTTPGenerator(cfg.GeneratorURL, cfg.GeneratorToken, cfg.EnrichTimeout)
	}
	var store ObjectStore
	if cfg.ImageStorageEnabled() {
		var err error
		store, err = NewR2Store(ctx, R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			return nil, err
		}
	}
	return NewEnricher(generator, store, cfg.PlaceholderImageURL, cfg.EnrichTimeout), nil
}
