package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialgraph/apperrors"
	"socialgraph/db"
	"socialgraph/logger"
	"socialgraph/models"

	"gorm.io/gorm"
)

// ProfileService - хранилище профилей
type ProfileService struct {
	db    *gorm.DB
	cache ProfileCache
}

// NewProfileService: cache может быть nil (Redis не настроен)
func NewProfileService(db *gorm.DB, cache ProfileCache) *ProfileService {
	return &ProfileService{db: db, cache: cache}
}

func (s *ProfileService) readDB(ctx context.Context) *gorm.DB {
	return db.ReadOnlyDB(ctx, s.db)
}

// Register создает профиль при регистрации аккаунта
func (s *ProfileService) Register(ctx context.Context, username, phone string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	phone = strings.TrimSpace(phone)
	if err := validateStruct(profileInput{Username: username, Phone: phone}); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Username: username,
		Phone:    phone,
	}
	err := db.WriteDB(ctx, s.db).Create(profile).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.Newf(apperrors.KindUsernameTaken, "username %s is already taken", username)
		}
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "failed to create profile")
	}

	logger.Info("Profile registered", "profile_id", profile.ID, "username", profile.Username)
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, id int64) (*models.Profile, error) {
	var profile models.Profile
	err := s.readDB(ctx).Where("id = ?", id).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "profile %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, fmt.Sprintf("failed to get profile %d", id))
	}
	return &profile, nil
}

// GetByUsername ищет профиль сначала в кеше, потом в БД. Ошибки кеша не
// фатальны - просто идем в БД.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.ProfileSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "username is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, username)
		if err != nil {
			logger.Warn("Profile cache read failed", "username", username, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	var profile models.Profile
	err := s.readDB(ctx).Where("username = ?", username).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "user %s not found", username)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "failed to get profile by username")
	}

	summary := profile.Summary()
	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			logger.Warn("Profile cache write failed", "username", username, "error", err)
		}
	}
	return &summary, nil
}
