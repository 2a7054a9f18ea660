package service

import (
	"context"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/storage"
	"recipebox/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users  repository.UserRepository
	images *ImageService
}

func NewUserService(users repository.UserRepository, images *ImageService) *UserService {
	return &UserService{users: users, images: images}
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update applies a partial profile update. Email and flags are not writable here.
func (s *UserService) Update(ctx context.Context, userID uint, form Form) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Update")
	defer func() { observability.EndSpan(span, err) }()

	fe := models.FieldErrors{}
	fields := map[string]any{}

	for _, name := range []string{"name", "first_name", "last_name", "country", "status"} {
		if v, ok := form.Text(fe, name, false, true); ok {
			fields[name] = v
		}
	}
	if v, ok := form.Text(fe, "username", false, true); ok {
		if err := validation.ValidateUsername(v); err != nil {
			fe.Add("username", err.Error())
		} else {
			fields["username"] = v
		}
	}
	if v, ok := form.Date(fe, "birthday"); ok {
		fields["birthday"] = v
	}
	if v, ok := form.Int(fe, "age", false, true, &zeroMin); ok {
		fields["age"] = v
	}
	if form.Has("password") {
		v, ok := form.scalar(fe, "password")
		if ok {
			if err := validation.ValidatePassword(v); err != nil {
				fe.Add("password", err.Error())
			} else {
				hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
				if err != nil {
					return nil, models.NewInternalError(err)
				}
				fields["password"] = string(hash)
			}
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// SetAvatar stores a new avatar and drops the previous file.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, up *Upload) (*models.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	key, err := s.images.Store(ctx, storage.KindAvatar, "avatar", up)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]any{"avatar": key}); err != nil {
		s.images.Remove(ctx, key)
		return nil, err
	}
	if old := strings.TrimSpace(current.Avatar); old != "" {
		s.images.Remove(ctx, old)
	}
	return s.users.GetByID(ctx, userID)
}

// Delete removes the account, everything it owns and the stored media.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	files, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	s.images.Remove(ctx, files...)
	return nil
}
