// Package auth はユーザー登録、パスワード認証、トークン管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
)

// MinPasswordLength はパスワードの最小文字数。
const MinPasswordLength = 12

// MaxUsernameLength はユーザー名の最大長。
const MaxUsernameLength = 150

// MetricsRecorder は認証失敗のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordAuthFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // bcryptのコストパラメータ。0の場合はbcrypt.DefaultCost
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.AuthTokenRepository
	config    ServiceConfig
	metrics   MetricsRecorder // nilの場合は記録しない
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.AuthTokenRepository,
	config ServiceConfig,
	metrics MetricsRecorder,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		config:    config,
		metrics:   metrics,
	}
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存し、平文は保持しない。
// ユーザー名が重複している場合は*model.APIError（DUPLICATE_USERNAME）を返す。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" {
		return nil, model.NewValidationError("username", "must not be empty")
	}
	// 長さはバイト数ではなく文字数（rune数）で数える
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, model.NewValidationError("username", fmt.Sprintf("must be at most %d characters", MaxUsernameLength))
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, model.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)

	return user, nil
}

// Authenticate はユーザー名とパスワードを検証する。
// ユーザー不在とパスワード不一致のどちらも同じAUTH_FAILEDを返し、
// メッセージからユーザーの存在を推測できないようにする。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordAuthFailure(username)
		return nil, model.NewAuthFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordAuthFailure(username)
		return nil, model.NewAuthFailedError()
	}

	return user, nil
}

// IssueToken はユーザーのトークンを発行する。
// 発行済みトークンがある場合はそれをそのまま返す（ローテーションしない）。
// 同時発行のレースはuser_idのUNIQUE制約で片方が敗北し、勝者の行を読み直す。
func (s *Service) IssueToken(ctx context.Context, userID string) (*model.AuthToken, error) {
	existing, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find auth token: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	tokenStr, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.AuthToken{
		Token:     tokenStr,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		// 同時発行のレースに敗北した場合は勝者のトークンを返す
		if apiErr, ok := err.(*model.APIError); ok && apiErr.Code == model.ErrCodeConstraintViolation {
			winner, findErr := s.tokenRepo.FindByUserID(ctx, userID)
			if findErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	slog.Info("auth token issued", slog.String("user_id", userID))

	return token, nil
}

// ResolveToken はトークン文字列から対応するユーザーを取得する。
// トークンが無効な場合は*model.APIError（UNAUTHENTICATED）を返す。
func (s *Service) ResolveToken(ctx context.Context, tokenStr string) (*model.User, error) {
	if tokenStr == "" {
		return nil, model.NewUnauthenticatedError()
	}

	token, err := s.tokenRepo.FindByToken(ctx, tokenStr)
	if err != nil {
		return nil, fmt.Errorf("failed to find auth token: %w", err)
	}
	if token == nil {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}

	return user, nil
}

// recordAuthFailure は認証失敗をログとメトリクスに記録する。
func (s *Service) recordAuthFailure(username string) {
	slog.Warn("authentication failed", slog.String("username", username))
	if s.metrics != nil {
		s.metrics.RecordAuthFailure()
	}
}

// generateToken は暗号的に安全な40文字の16進トークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
