package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/recipeman/internal/middleware"
	"github.com/hitoshi/recipeman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Authenticate はユーザー名とパスワードを検証する。
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	// IssueToken はユーザーのトークンを返す。発行済みの場合は同じトークンを返す。
	IssueToken(ctx context.Context, userID string) (*model.AuthToken, error)
}

// AuthHandler はユーザー登録・トークン発行のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// credentialsRequest はトークン発行・ユーザー登録リクエストのボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse はトークン発行のAPIレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// userResponse はユーザー情報のAPIレスポンス。
// パスワード関連のフィールドは決して含めない。
type userResponse struct {
	Username string `json:"username"`
}

// CreateToken は認証情報を検証してトークンを返す。
// 発行済みトークンがある場合は同じトークンを返す（ローテーションしない）。
// POST /token
func (h *AuthHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "failed to parse JSON"))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.service.IssueToken(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{Token: token.Token})
}

// Register は新規ユーザーを登録する。
// POST /users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "failed to parse JSON"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(userResponse{Username: user.Username})
}

// Me は認証済みユーザー自身の情報を返す。
// GET /user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{Username: username})
}
