package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeman/internal/middleware"
	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/recipe"
)

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	// Create はレシピを作成する。ingredientsの重複は1件に集約される。
	Create(ctx context.Context, userID, name, description string, ingredients []string) (*model.Recipe, error)
	// List はユーザーのレシピ一覧をID昇順で返す。
	List(ctx context.Context, userID, nameContains string) ([]*model.Recipe, error)
	// Get は指定IDのレシピを返す。
	Get(ctx context.Context, userID string, id int64) (*model.Recipe, error)
	// Update はレシピを部分更新する。
	Update(ctx context.Context, userID string, id int64, params recipe.UpdateParams) (*model.Recipe, error)
	// Delete はレシピと所属する材料を削除する。
	Delete(ctx context.Context, userID string, id int64) error
}

// RecipeHandler はレシピ管理のHTTPハンドラー。
type RecipeHandler struct {
	service RecipeServiceInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{
		service: service,
	}
}

// ingredientPayload はリクエスト・レスポンス双方で使う材料オブジェクト。
type ingredientPayload struct {
	Name string `json:"name"`
}

// createRecipeRequest はレシピ作成リクエストのボディ。
type createRecipeRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Ingredients []ingredientPayload `json:"ingredients"`
}

// updateRecipeRequest はレシピ部分更新リクエストのボディ。
// nilのフィールドは「指定なし＝変更しない」を表す。
// Ingredientsはnil（省略）と空配列（全材料削除）を区別する。
type updateRecipeRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Ingredients []ingredientPayload `json:"ingredients"`
}

// recipeResponse はレシピのAPIレスポンス。
type recipeResponse struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Ingredients []ingredientPayload `json:"ingredients"`
}

// Create はレシピを作成する。
// POST /recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "failed to parse JSON"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Name, req.Description, ingredientNames(req.Ingredients))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toRecipeResponse(created))
}

// List はレシピ一覧を取得する。
// nameクエリパラメータが指定された場合は大文字小文字を区別しない部分一致で絞り込む。
// GET /recipes?name=<substring>
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	nameContains := r.URL.Query().Get("name")

	recipes, err := h.service.List(r.Context(), userID, nameContains)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]recipeResponse, len(recipes))
	for i, rec := range recipes {
		results[i] = toRecipeResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Get はレシピ詳細を取得する。
// GET /recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id, ok := recipeIDFromURL(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRecipeResponse(found))
}

// Update はレシピを部分更新する。指定されたフィールドのみ変更する。
// PATCH /recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id, ok := recipeIDFromURL(w, r)
	if !ok {
		return
	}

	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("body", "failed to parse JSON"))
		return
	}

	params := recipe.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
	}
	// nil（フィールド省略＝変更なし）と空配列（全材料削除）を区別して伝搬する
	if req.Ingredients != nil {
		params.Ingredients = ingredientNames(req.Ingredients)
	}

	updated, err := h.service.Update(r.Context(), userID, id, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toRecipeResponse(updated))
}

// Delete はレシピを削除する。削除は冪等ではなく、
// 削除済みIDへの再実行は404を返す。
// DELETE /recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id, ok := recipeIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// recipeIDFromURL はURLパラメータからレシピIDを取り出す。
// 数値でない場合は404を書き込んでfalseを返す。
func recipeIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     model.ErrCodeRecipeNotFound,
			Message:  "Recipe not found: " + idStr,
			Category: "recipe",
			Action:   "Check the recipe ID.",
		})
		return 0, false
	}
	return id, true
}

// ingredientNames は材料オブジェクトのリストから名前のリストを取り出す。
func ingredientNames(payloads []ingredientPayload) []string {
	if payloads == nil {
		return nil
	}
	names := make([]string, len(payloads))
	for i, p := range payloads {
		names[i] = p.Name
	}
	return names
}

// toRecipeResponse はmodel.RecipeからAPIレスポンスに変換する。
// 材料は作成順を保持した名前のみのオブジェクトとして返す。
func toRecipeResponse(rec *model.Recipe) recipeResponse {
	ingredients := make([]ingredientPayload, len(rec.Ingredients))
	for i, ing := range rec.Ingredients {
		ingredients[i] = ingredientPayload{Name: ing.Name}
	}
	return recipeResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Ingredients: ingredients,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 定義済みエラーコードを網羅的に変換し、未知のコードは500にする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthFailed:
		return http.StatusBadRequest
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeRecipeNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateRecipeName:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateUsername:
		return http.StatusBadRequest
	case model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeConstraintViolation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
