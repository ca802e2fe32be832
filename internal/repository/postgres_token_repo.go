package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeman/internal/model"
)

// PostgresAuthTokenRepo はPostgreSQLを使用した認証トークンリポジトリ。
type PostgresAuthTokenRepo struct {
	db *sql.DB
}

// NewPostgresAuthTokenRepo はPostgresAuthTokenRepoを生成する。
func NewPostgresAuthTokenRepo(db *sql.DB) *PostgresAuthTokenRepo {
	return &PostgresAuthTokenRepo{db: db}
}

// Create はトークンを作成する。
// 同一ユーザーの2本目のトークンはunique_token_per_user制約で拒否される。
func (r *PostgresAuthTokenRepo) Create(ctx context.Context, token *model.AuthToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (token, user_id, created_at)
		 VALUES ($1, $2, $3)`,
		token.Token, token.UserID, token.CreatedAt,
	)
	if err != nil {
		if mapped := mapIntegrityError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert auth token: %w", err)
	}

	return nil
}

// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
func (r *PostgresAuthTokenRepo) FindByUserID(ctx context.Context, userID string) (*model.AuthToken, error) {
	token := &model.AuthToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM auth_tokens WHERE user_id = $1`,
		userID,
	).Scan(&token.Token, &token.UserID, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth token by user ID: %w", err)
	}

	return token, nil
}

// FindByToken はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
func (r *PostgresAuthTokenRepo) FindByToken(ctx context.Context, tokenStr string) (*model.AuthToken, error) {
	token := &model.AuthToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM auth_tokens WHERE token = $1`,
		tokenStr,
	).Scan(&token.Token, &token.UserID, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth token: %w", err)
	}

	return token, nil
}

// compile-time interface check
var _ AuthTokenRepository = (*PostgresAuthTokenRepo)(nil)
