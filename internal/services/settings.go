package services

import (
	"context"
	"strconv"

	"github.com/abrezinsky/tallyvote/internal/errors"
	"github.com/abrezinsky/tallyvote/internal/logger"
	"github.com/abrezinsky/tallyvote/internal/repository"
)

// Setting keys
const (
	SettingBaseURL                = "base_url"
	SettingRequireRegisteredToken = "require_registered_token"
)

// settingKeys lists every key exposed through AllSettings/UpdateSettings
var settingKeys = []string{
	SettingBaseURL,
	SettingRequireRegisteredToken,
}

// SettingsService handles instance-level policy settings
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// GetSetting retrieves a raw setting value
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", errors.Internal(err)
	}
	return value, nil
}

// SetSetting stores a raw setting value
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		return errors.Internal(err)
	}
	s.log.Debug("Setting updated", "key", key)
	return nil
}

// GetBaseURL returns the instance base URL used in token QR links
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.GetSetting(ctx, SettingBaseURL)
}

// SetBaseURL stores the instance base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.SetSetting(ctx, SettingBaseURL, url)
}

// RequireRegisteredToken reports whether casting requires an issued
// voter token. Defaults to false: identity verification belongs to an
// external collaborator and this engine only enforces uniqueness.
func (s *SettingsService) RequireRegisteredToken(ctx context.Context) (bool, error) {
	value, err := s.GetSetting(ctx, SettingRequireRegisteredToken)
	if err != nil {
		return false, err
	}
	if value == "" {
		return false, nil
	}
	required, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return required, nil
}

// SetRequireRegisteredToken updates the token registration policy
func (s *SettingsService) SetRequireRegisteredToken(ctx context.Context, required bool) error {
	return s.SetSetting(ctx, SettingRequireRegisteredToken, strconv.FormatBool(required))
}

// AllSettings returns every known setting key and its value
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]string, error) {
	settings := make(map[string]string, len(settingKeys))
	for _, key := range settingKeys {
		value, err := s.GetSetting(ctx, key)
		if err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, nil
}
