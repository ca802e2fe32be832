// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// APIの呼び出し元に返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recipe, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード。
// ハンドラー層のmapAPIErrorToHTTPStatusで網羅的にHTTPステータスへ変換する。
const (
	ErrCodeAuthFailed          = "AUTH_FAILED"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeRecipeNotFound      = "RECIPE_NOT_FOUND"
	ErrCodeDuplicateRecipeName = "DUPLICATE_RECIPE_NAME"
	ErrCodeDuplicateUsername   = "DUPLICATE_USERNAME"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
)

// NewAuthFailedError は認証失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない固定メッセージを返す
// （ユーザー列挙攻撃の防止）。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "Unable to authenticate with provided credentials",
		Category: "auth",
		Action:   "Check the username and password and try again.",
	}
}

// NewUnauthenticatedError はトークン未提示・無効トークンのエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication credentials were not provided or are invalid.",
		Category: "auth",
		Action:   "Obtain a token via POST /token and send it in the Authorization header.",
	}
}

// NewRecipeNotFoundError はレシピ未検出エラーを生成する。
// 存在しないIDと他ユーザー所有のIDは呼び出し元から区別できない。
func NewRecipeNotFoundError(recipeID int64) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("Recipe not found: %d", recipeID),
		Category: "recipe",
		Action:   "Check the recipe ID.",
	}
}

// NewDuplicateRecipeNameError はレシピ名重複エラーを生成する。
func NewDuplicateRecipeNameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateRecipeName,
		Message:  "Recipe with such name already exists",
		Category: "validation",
		Action:   "Choose a different recipe name.",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "A user with that username already exists.",
		Category: "validation",
		Action:   "Choose a different username.",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("%s: %s", field, reason),
		Category: "validation",
		Action:   "Fix the request body and retry.",
	}
}

// NewConstraintViolationError は個別に認識されなかったDB整合性制約違反の
// 汎用エラーを生成する。
func NewConstraintViolationError() *APIError {
	return &APIError{
		Code:     ErrCodeConstraintViolation,
		Message:  "Bad request",
		Category: "validation",
		Action:   "Check the request and try again.",
	}
}
