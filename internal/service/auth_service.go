package service

import (
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

// IDTokenValidator 校验外部身份令牌
type IDTokenValidator interface {
	Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

type googleValidator struct{}

func (googleValidator) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService struct {
	UserRepo  UserRepo
	Cfg       *config.Config
	Validator IDTokenValidator
}

func NewAuthService(userRepo UserRepo, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:  userRepo,
		Cfg:       cfg,
		Validator: googleValidator{},
	}
}

func (s *AuthService) Register(ctx context.Context, user *model.User) (*AuthResult, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := s.UserRepo.FindByEmail(ctx, user.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.ID = model.GenerateUUID()
	user.Password = string(hashedPassword)
	user.Role = model.RoleUser
	user.Level = 1
	user.LastLogin = time.Now()
	user.LastSeen = user.LastLogin
	if user.DisplayName == "" {
		user.DisplayName = strings.Split(user.Email, "@")[0]
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Password == "" {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	s.touchLogin(ctx, user)
	return s.issue(user)
}

// GoogleLogin 校验 Google ID Token，按 subject 创建或更新用户
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	payload, err := s.Validator.Validate(ctx, idToken, s.Cfg.Google.ClientID)
	if err != nil {
		logger.Log.Warn("Invalid Google ID token", zap.Error(err))
		return nil, util.ErrInvalidCredentials
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	user, err := s.UserRepo.FindByID(ctx, payload.Subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		now := time.Now()
		user = &model.User{
			UUIDBase:    model.UUIDBase{ID: payload.Subject},
			DisplayName: name,
			Email:       strings.ToLower(email),
			PhotoURL:    picture,
			Role:        model.RoleUser,
			Level:       1,
			LastLogin:   now,
			LastSeen:    now,
		}
		if err := s.UserRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return s.issue(user)
	}
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	s.touchLogin(ctx, user)
	return s.issue(user)
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) touchLogin(ctx context.Context, user *model.User) {
	now := time.Now()
	user.LastLogin = now
	user.LastSeen = now
	if err := s.UserRepo.Updates(ctx, user.ID, map[string]interface{}{"last_login": now, "last_seen": now}); err != nil {
		logger.Log.Warn("Failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
