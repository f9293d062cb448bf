package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/Dosada05/lobby-royale/repositories"
	"github.com/Dosada05/lobby-royale/storage"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateRole(ctx context.Context, requester *models.User, userID int, role models.UserRole) (*models.User, error)
	UploadAvatar(ctx context.Context, requester *models.User, userID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

// UpdateRole меняет роль пользователя. Разрешено только администраторам.
func (s *userService) UpdateRole(ctx context.Context, requester *models.User, userID int, role models.UserRole) (*models.User, error) {
	if requester == nil || requester.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if role != models.RolePlayer && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, mapRepoError(err)
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

// UploadAvatar грузит аватар в объектное хранилище и запоминает ключ.
// Пользователь меняет только свой аватар; администратор — любой.
func (s *userService) UploadAvatar(ctx context.Context, requester *models.User, userID int, contentType string, file io.Reader) (*models.User, error) {
	if requester == nil || (requester.ID != userID && requester.Role != models.RoleAdmin) {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("avatar storage is not configured")
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	key := fmt.Sprintf("avatars/%d/%d", userID, time.Now().UnixNano())
	uploadResult, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %d: %w", userID, err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &uploadResult.Key); err != nil {
		// Откатываем только что залитый объект, чтобы не копить мусор в бакете.
		_ = s.uploader.Delete(ctx, uploadResult.Key)
		return nil, mapRepoError(err)
	}

	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			fmt.Printf("failed to delete previous avatar %s: %v\n", *oldKey, delErr)
		}
	}

	user.AvatarKey = &uploadResult.Key
	populateUserDetails(user, s.uploader)
	return user, nil
}

func populateUserDetails(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = "" // Важно для безопасности
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.AvatarKey)
		if url != "" {
			user.AvatarURL = &url
		}
	}
}
