// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/recipeman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// ユーザー名が重複している場合は*model.APIError（DUPLICATE_USERNAME）を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthTokenRepository は認証トークンの永続化インターフェース。
// トークンはユーザーに1:1で紐付く（user_idにUNIQUE制約）。
type AuthTokenRepository interface {
	// Create はトークンを作成する。
	// 同一ユーザーのトークンが既に存在する場合は整合性制約エラーを返す。
	Create(ctx context.Context, token *model.AuthToken) error

	// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.AuthToken, error)

	// FindByToken はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.AuthToken, error)
}

// RecipeRepository はレシピと材料の永続化インターフェース。
// レシピへの書き込みと材料の増減は常に同一トランザクションで行う。
type RecipeRepository interface {
	// CreateWithIngredients はレシピと材料を同一トランザクションで作成する。
	// 成功時はrecipe.IDに採番されたIDを設定する。
	// (user_id, name)が重複している場合は*model.APIError（DUPLICATE_RECIPE_NAME）を返す。
	// 一意性は事前チェックせずDB制約に委ねる（チェックと挿入の間のレースを排除）。
	CreateWithIngredients(ctx context.Context, recipe *model.Recipe, ingredientNames []string) error

	// ListByUserID は指定ユーザーのレシピ一覧をID昇順で返す。
	// nameContainsが空でない場合は大文字小文字を区別しない部分一致で絞り込む。
	ListByUserID(ctx context.Context, userID, nameContains string) ([]*model.Recipe, error)

	// FindByIDAndUserID は指定IDかつ指定ユーザー所有のレシピを取得する。
	// IDが存在しない場合も他ユーザー所有の場合も同じくnilを返す。
	FindByIDAndUserID(ctx context.Context, id int64, userID string) (*model.Recipe, error)

	// UpdateWithIngredients はレシピの更新と材料の差分適用を
	// 同一トランザクションで行う。createNamesは新規作成する材料名、
	// deleteIDsは削除する材料行のID。
	// (user_id, name)が重複する場合は*model.APIError（DUPLICATE_RECIPE_NAME）を返す。
	UpdateWithIngredients(ctx context.Context, recipe *model.Recipe, createNames []string, deleteIDs []int64) error

	// Delete は材料→レシピの順に同一トランザクションで削除する。
	// FKのCASCADEには頼らず明示的に2段階で削除する。
	Delete(ctx context.Context, id int64, userID string) error

	// ListIngredientsByRecipeID は指定レシピの材料一覧をID昇順（作成順）で返す。
	ListIngredientsByRecipeID(ctx context.Context, recipeID int64) ([]*model.Ingredient, error)
}
