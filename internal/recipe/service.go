// Package recipe はレシピ管理のドメインロジックを提供する。
package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
)

// MetricsRecorder はレシピ操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRecipeCreated()
	RecordIngredientsCreated(count int)
	RecordIngredientsDeleted(count int)
}

// Service はレシピ管理のサービス層。
// バリデーション、所有権チェック、材料の差分適用のビジネスロジックを提供する。
type Service struct {
	repo    repository.RecipeRepository
	metrics MetricsRecorder // nilの場合は記録しない
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.RecipeRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// UpdateParams はレシピの部分更新パラメータ。
// nilのフィールドは変更しない。Ingredientsはnil（フィールド省略＝変更なし）と
// 空スライス（明示的な空リスト＝全材料削除）を区別する。
type UpdateParams struct {
	Name        *string
	Description *string
	Ingredients []string
}

// Create はレシピを作成する。ingredientsの重複は1件に集約される。
// 同名レシピが既に存在する場合は*model.APIError（DUPLICATE_RECIPE_NAME）を返す。
func (s *Service) Create(ctx context.Context, userID, name, description string, ingredients []string) (*model.Recipe, error) {
	if err := validateRecipeName(name); err != nil {
		return nil, err
	}
	if err := validateIngredientNames(ingredients); err != nil {
		return nil, err
	}

	now := time.Now()
	recipe := &model.Recipe{
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 空の現在集合に対する差分計算で、重複除去だけを適用する
	diff := ReconcileIngredients(nil, ingredients)

	if err := s.repo.CreateWithIngredients(ctx, recipe, diff.CreateNames); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRecipeCreated()
		s.metrics.RecordIngredientsCreated(len(diff.CreateNames))
	}

	slog.Info("レシピを作成しました",
		slog.Int64("recipe_id", recipe.ID),
		slog.String("user_id", userID),
		slog.Int("ingredients", len(diff.CreateNames)),
	)

	return s.loadIngredients(ctx, recipe)
}

// List は指定ユーザーのレシピ一覧を材料付きでID昇順で返す。
// nameContainsが空でない場合は大文字小文字を区別しない部分一致で絞り込む。
func (s *Service) List(ctx context.Context, userID, nameContains string) ([]*model.Recipe, error) {
	recipes, err := s.repo.ListByUserID(ctx, userID, nameContains)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}

	for _, recipe := range recipes {
		if _, err := s.loadIngredients(ctx, recipe); err != nil {
			return nil, err
		}
	}

	return recipes, nil
}

// Get は指定IDのレシピを材料付きで返す。
// IDが存在しない場合も他ユーザー所有の場合も同じRECIPE_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID string, id int64) (*model.Recipe, error) {
	recipe, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(id)
	}

	return s.loadIngredients(ctx, recipe)
}

// Update はレシピを部分更新する。指定されたフィールドのみ変更する。
// Ingredientsが指定された場合は材料の差分を計算して適用する。
func (s *Service) Update(ctx context.Context, userID string, id int64, params UpdateParams) (*model.Recipe, error) {
	recipe, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(id)
	}

	if params.Name != nil {
		if err := validateRecipeName(*params.Name); err != nil {
			return nil, err
		}
		recipe.Name = *params.Name
	}
	if params.Description != nil {
		recipe.Description = *params.Description
	}
	recipe.UpdatedAt = time.Now()

	diff := IngredientDiff{}
	if params.Ingredients != nil {
		if err := validateIngredientNames(params.Ingredients); err != nil {
			return nil, err
		}
		current, err := s.repo.ListIngredientsByRecipeID(ctx, recipe.ID)
		if err != nil {
			return nil, fmt.Errorf("材料一覧の取得に失敗しました: %w", err)
		}
		diff = ReconcileIngredients(current, params.Ingredients)
	}

	if err := s.repo.UpdateWithIngredients(ctx, recipe, diff.CreateNames, diff.DeleteIDs); err != nil {
		return nil, err
	}

	if s.metrics != nil && !diff.Empty() {
		s.metrics.RecordIngredientsCreated(len(diff.CreateNames))
		s.metrics.RecordIngredientsDeleted(len(diff.DeleteIDs))
	}

	return s.loadIngredients(ctx, recipe)
}

// Delete はレシピと所属する材料を削除する。
// 削除済み・存在しない・他ユーザー所有のIDはいずれもRECIPE_NOT_FOUNDを返す
// （削除は冪等ではない）。
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	recipe, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return model.NewRecipeNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}

	slog.Info("レシピを削除しました",
		slog.Int64("recipe_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// loadIngredients はレシピの材料を作成順で読み込んで返す。
func (s *Service) loadIngredients(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	ingredients, err := s.repo.ListIngredientsByRecipeID(ctx, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("材料一覧の取得に失敗しました: %w", err)
	}
	recipe.Ingredients = ingredients
	return recipe, nil
}

// validateRecipeName はレシピ名を検証する。
// 長さはバイト数ではなく文字数（rune数）で数える。
func validateRecipeName(name string) error {
	if name == "" {
		return model.NewValidationError("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > model.MaxRecipeNameLength {
		return model.NewValidationError("name", fmt.Sprintf("must be at most %d characters", model.MaxRecipeNameLength))
	}
	return nil
}

// validateIngredientNames は材料名リストを検証する。
func validateIngredientNames(names []string) error {
	for _, name := range names {
		if name == "" {
			return model.NewValidationError("ingredients", "ingredient name must not be empty")
		}
		if utf8.RuneCountInString(name) > model.MaxRecipeNameLength {
			return model.NewValidationError("ingredients", fmt.Sprintf("ingredient name must be at most %d characters", model.MaxRecipeNameLength))
		}
	}
	return nil
}
