package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"woreda_portal/internal/domain/models"
	jwtlib "woreda_portal/internal/lib/jwt"
	"woreda_portal/internal/lib/logger/sl"
	"woreda_portal/internal/repository"
	"woreda_portal/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

const (
	AccessTokenExpire  = 15 * time.Minute
	RefreshTokenExpire = 7 * 24 * time.Hour
)

// AuthService граница выдачи учётных данных: проверка пароля,
// выпуск пары токенов, учёт refresh-токенов в redis.
// Сам RouteGuard токен не проверяет — только наличие.
type AuthService struct {
	log      *slog.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   string
}

func NewAuthService(log *slog.Logger, users repository.UserRepository, sessions repository.SessionRepository, secret string) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		sessions: sessions,
		secret:   secret,
	}
}

// Login проверяет пароль администратора и выдаёт пару токенов
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	const op = "auth_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login user")

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := comparePassword(user.Password, password); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn("failed to update last login", sl.Err(err))
	}

	log.Info("user logged in successfully")

	return s.GenerateTokens(ctx, user)
}

// GenerateTokens выпускает пару access/refresh и регистрирует
// refresh-токен в хранилище сессий
func (s *AuthService) GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error) {
	const op = "auth_service.GenerateTokens"

	accessToken, err := jwtlib.NewToken(user, s.secret, AccessTokenExpire)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := jwtlib.NewToken(user, s.secret, RefreshTokenExpire)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.SaveRefreshToken(ctx, user.ID.String(), refreshToken, RefreshTokenExpire); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		UserID:       user.ID.String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens меняет действующий refresh-токен на новую пару
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "auth_service.RefreshTokens"

	token, _, err := new(jwt.Parser).ParseUnverified(refreshToken, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["uid"].(string)
	if !ok {
		return nil, ErrInvalidTokenClaims
	}

	exists, err := s.sessions.GetRefreshToken(ctx, userID, refreshToken)
	if err != nil || !exists {
		return nil, ErrInvalidToken
	}

	if err := s.sessions.DeleteRefreshToken(ctx, userID, refreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidTokenClaims
	}

	user, err := s.users.GetUserById(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GenerateTokens(ctx, user)
}

// Logout отзывает все refresh-токены пользователя
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	const op = "auth_service.Logout"

	if err := s.sessions.DeleteAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
