package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// AvatarFolder is where profile pictures are stored on the media host
const AvatarFolder = "socialmap/avatars"

// MaxAvatarDataURLLength caps the encoded upload at roughly 3 MB of image data
const MaxAvatarDataURLLength = 4 << 20

// ErrInvalidAvatar is returned for anything that is not a base64 image data URL
var ErrInvalidAvatar = errors.New("avatar must be a base64 encoded image data url")

// avatarService implements the AvatarService interface
type avatarService struct {
	uowFactory UnitOfWorkFactory
	uploader   MediaUploader
}

// NewAvatarService creates a new avatar service
func NewAvatarService(uowFactory UnitOfWorkFactory, uploader MediaUploader) AvatarService {
	return &avatarService{
		uowFactory: uowFactory,
		uploader:   uploader,
	}
}

// ValidateAvatarDataURL accepts data:image/*;base64 payloads within the size cap
func ValidateAvatarDataURL(dataURL string) error {
	if len(dataURL) > MaxAvatarDataURLLength {
		return fmt.Errorf("%w: too large", ErrInvalidAvatar)
	}
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || payload == "" {
		return ErrInvalidAvatar
	}
	if !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return ErrInvalidAvatar
	}
	return nil
}

// UploadAvatar hosts the image under the profile's uid and stores the url
func (s *avatarService) UploadAvatar(ctx context.Context, uid, dataURL string) (string, error) {
	if err := ValidateAvatarDataURL(dataURL); err != nil {
		return "", err
	}

	// Upload runs outside the transaction
	url, err := s.uploader.UploadDataURL(ctx, dataURL, AvatarFolder, uid)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", ErrAccountNotFound
	}

	if err := uow.UserRepository().UpdateAvatar(ctx, uid, url); err != nil {
		return "", fmt.Errorf("failed to store avatar url: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("uid", uid).Info("Avatar updated")
	return url, nil
}
