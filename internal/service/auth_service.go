package service

import (
	"context"
	"errors"
	"time"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/repository"
	"recipebox/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	blacklistPrefix = "blacklist:"
	msgEmailTaken   = "user with this email already exists."
)

var errInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string
	User  *models.User
}

type AuthService struct {
	users    repository.UserRepository
	redis    *redis.Client
	secret   string
	tokenTTL time.Duration
}

// NewAuthService builds the service. rdb may be nil, in which case tokens
// cannot be revoked before they expire.
func NewAuthService(users repository.UserRepository, rdb *redis.Client, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, redis: rdb, secret: secret, tokenTTL: tokenTTL}
}

// Signup creates an active account and signs a token for it.
func (s *AuthService) Signup(ctx context.Context, form Form) (*AuthResult, error) {
	fe := models.FieldErrors{}
	email, emailOK := form.Text(fe, "email", true, false)
	password, passwordOK := form.Text(fe, "password", true, false)
	name, _ := form.Text(fe, "name", false, false)

	if emailOK {
		email = validation.NormalizeEmail(email)
		if err := validation.ValidateEmail(email); err != nil {
			fe.Add("email", err.Error())
			emailOK = false
		}
	}
	if passwordOK {
		if err := validation.ValidatePassword(password); err != nil {
			fe.Add("password", err.Error())
		}
	}
	if emailOK {
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fe.Add("email", msgEmailTaken)
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Email: email, Password: string(hash), Name: name, IsActive: true}
	if err := s.users.Create(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewFieldValidationError(map[string][]string{"email": {msgEmailTaken}})
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

// Login checks credentials and signs a token. Unknown emails, wrong
// passwords and inactive accounts all yield the same 401.
func (s *AuthService) Login(ctx context.Context, form Form) (*AuthResult, error) {
	fe := models.FieldErrors{}
	email, _ := form.Text(fe, "email", true, false)
	password, _ := form.Text(fe, "password", true, false)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := middleware.IssueToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := time.Now()
	if err := s.users.TouchConnection(ctx, user.ID, now); err != nil {
		return nil, err
	}
	if user.FirstConnection == nil {
		user.FirstConnection = &now
	}
	user.LastConnection = &now
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*middleware.TokenClaims, error) {
	claims, err := middleware.ParseToken(s.secret, token)
	if err != nil {
		return nil, models.NewUnauthorizedError(err.Error())
	}
	revoked, err := s.IsRevoked(ctx, claims.JTI)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed", "error", err.Error())
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *middleware.TokenClaims) error {
	if s.redis == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}
