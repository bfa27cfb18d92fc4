package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/repository"

	"go.opentelemetry.io/otel/trace"
)

const apiKeyPrefix = "nsn_"

type APIKeyStore interface {
	Create(ctx context.Context, key, name string) (*domain.APIKey, error)
	GetActive(ctx context.Context, key string) (*domain.APIKey, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type APIKeyService struct {
	tracer trace.Tracer
	store  APIKeyStore
	now    func() time.Time
}

func NewAPIKeyService(tracer trace.Tracer, store APIKeyStore) *APIKeyService {
	return &APIKeyService{tracer: tracer, store: store, now: time.Now}
}

// GenerateKey returns "nsn_" followed by 32 random bytes in unpadded base64url.
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *APIKeyService) Create(ctx context.Context, name string) (*domain.APIKey, error) {
	ctx, span := s.tracer.Start(ctx, "api-key-service.create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("name is required")
	}
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, key, name)
	if err != nil {
		return nil, apierr.Database(err)
	}
	return created, nil
}

// Validate returns the active record for key, or nil when the key is unknown
// or revoked. Successful lookups update last_used_at.
func (s *APIKeyService) Validate(ctx context.Context, key string) (*domain.APIKey, error) {
	ctx, span := s.tracer.Start(ctx, "api-key-service.validate")
	defer span.End()

	if !strings.HasPrefix(key, apiKeyPrefix) {
		return nil, nil
	}
	rec, err := s.store.GetActive(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.Database(err)
	}
	if err := s.store.Touch(ctx, rec.ID, s.now().UTC()); err != nil {
		log.Printf("api key touch failed for %d: %v", rec.ID, err)
	}
	return rec, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]*domain.APIKey, error) {
	ctx, span := s.tracer.Start(ctx, "api-key-service.list")
	defer span.End()

	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if keys == nil {
		keys = []*domain.APIKey{}
	}
	return keys, nil
}

func (s *APIKeyService) Revoke(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "api-key-service.revoke")
	defer span.End()

	return apiKeyErr(s.store.Revoke(ctx, id))
}

func (s *APIKeyService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "api-key-service.delete")
	defer span.End()

	return apiKeyErr(s.store.Delete(ctx, id))
}

func apiKeyErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apierr.NotFound("API key not found")
	default:
		return apierr.Database(err)
	}
}
