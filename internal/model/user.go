// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken はユーザーに1:1で紐付く認証トークンを表す。
// 一度発行したトークンは再発行時も同じ値を返す（ローテーションしない）。
type AuthToken struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}
