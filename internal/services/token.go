package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/tallyvote/internal/errors"
	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/models"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// TokenService issues opaque voter tokens. The engine never interprets
// a token beyond equality; issuance exists so an operator can hand out
// identities (as QR codes) when no external identity provider is wired.
type TokenService struct {
	log      logger.Logger
	repo     repository.TokenRepository
	settings SettingsServicer
}

// NewTokenService creates a new TokenService
func NewTokenService(log logger.Logger, repo repository.TokenRepository, settings SettingsServicer) *TokenService {
	return &TokenService{log: log, repo: repo, settings: settings}
}

// IssueTokens generates and registers count fresh voter tokens
func (s *TokenService) IssueTokens(ctx context.Context, count int, label string) ([]string, error) {
	if count <= 0 || count > 500 {
		return nil, ErrInvalidTokenCount
	}

	tokens := make([]string, 0, count)
	for i := 0; i < count; i++ {
		token := uuid.NewString()
		if err := s.repo.CreateToken(ctx, token, label); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				// UUID collision; skip and retry with a fresh value
				i--
				continue
			}
			return nil, errors.Internal(err)
		}
		tokens = append(tokens, token)
	}

	s.log.Info("Voter tokens issued", "count", count, "label", label)
	return tokens, nil
}

// ListTokens returns all issued voter tokens
func (s *TokenService) ListTokens(ctx context.Context) ([]models.VoterToken, error) {
	tokens, err := s.repo.ListTokens(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return tokens, nil
}

// IsRegistered reports whether a token was issued by this instance
func (s *TokenService) IsRegistered(ctx context.Context, token string) (bool, error) {
	exists, err := s.repo.TokenExists(ctx, token)
	if err != nil {
		return false, errors.Internal(err)
	}
	return exists, nil
}

// TokenQRImage renders a voting-URL QR code PNG for an issued token
func (s *TokenService) TokenQRImage(ctx context.Context, token string) ([]byte, error) {
	exists, err := s.repo.TokenExists(ctx, token)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !exists {
		return nil, errors.NotFound("voter token not found")
	}

	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil || baseURL == "" {
		return nil, errors.Validation("base_url not configured")
	}

	voteURL := fmt.Sprintf("%s/vote/%s", strings.TrimSuffix(baseURL, "/"), token)
	return qrcode.Encode(voteURL, qrcode.Medium, 256)
}
