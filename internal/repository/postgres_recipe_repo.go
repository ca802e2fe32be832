package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/recipeman/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
// レシピと材料の書き込みは常に同一トランザクションで行う。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// CreateWithIngredients はレシピと材料を同一トランザクションで作成する。
// (user_id, name)の一意性は事前チェックせず、DB制約違反を
// DUPLICATE_RECIPE_NAMEに変換する。
func (r *PostgresRecipeRepo) CreateWithIngredients(ctx context.Context, recipe *model.Recipe, ingredientNames []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// レシピを作成
	err = tx.QueryRowContext(ctx,
		`INSERT INTO recipes (user_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		recipe.UserID, recipe.Name, recipe.Description, recipe.CreatedAt, recipe.UpdatedAt,
	).Scan(&recipe.ID)
	if err != nil {
		if mapped := mapIntegrityError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	// 材料を作成
	if err := insertIngredients(ctx, tx, recipe.UserID, recipe.ID, ingredientNames); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUserID は指定ユーザーのレシピ一覧をID昇順で返す。
// nameContainsが空でない場合はILIKEによる部分一致で絞り込む。
// 検索文字列中の%と_はリテラルとして扱う。
func (r *PostgresRecipeRepo) ListByUserID(ctx context.Context, userID, nameContains string) ([]*model.Recipe, error) {
	query := `SELECT id, user_id, name, description, created_at, updated_at
	          FROM recipes WHERE user_id = $1`
	args := []any{userID}

	if nameContains != "" {
		query += ` AND name ILIKE $2 ESCAPE '\'`
		args = append(args, "%"+escapeLikePattern(nameContains)+"%")
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*model.Recipe{}
	for rows.Next() {
		recipe := &model.Recipe{}
		if err := rows.Scan(&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	return recipes, nil
}

// FindByIDAndUserID は指定IDかつ指定ユーザー所有のレシピを取得する。
// IDが存在しない場合も他ユーザー所有の場合も同じくnilを返す
// （他ユーザーのデータの存在を漏らさない）。
func (r *PostgresRecipeRepo) FindByIDAndUserID(ctx context.Context, id int64, userID string) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM recipes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description, &recipe.CreatedAt, &recipe.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}

	return recipe, nil
}

// UpdateWithIngredients はレシピの更新と材料の差分適用を同一トランザクションで行う。
// createNamesの挿入とdeleteIDsの削除のどちらかが失敗した場合は全体をロールバックする。
func (r *PostgresRecipeRepo) UpdateWithIngredients(ctx context.Context, recipe *model.Recipe, createNames []string, deleteIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// レシピ本体を更新
	_, err = tx.ExecContext(ctx,
		`UPDATE recipes SET name = $1, description = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		recipe.Name, recipe.Description, recipe.UpdatedAt, recipe.ID, recipe.UserID,
	)
	if err != nil {
		if mapped := mapIntegrityError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	// 不要になった材料を削除
	for _, ingredientID := range deleteIDs {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM ingredients WHERE id = $1 AND recipe_id = $2`,
			ingredientID, recipe.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete ingredient: %w", err)
		}
	}

	// 新規材料を作成
	if err := insertIngredients(ctx, tx, recipe.UserID, recipe.ID, createNames); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete は材料→レシピの順に同一トランザクションで削除する。
// スキーマのON DELETE CASCADEには頼らず明示的に2段階で削除する。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, id int64, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. 材料を削除
	_, err = tx.ExecContext(ctx,
		`DELETE FROM ingredients WHERE recipe_id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ingredients: %w", err)
	}

	// 2. レシピを削除
	result, err := tx.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipe not found: %d", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListIngredientsByRecipeID は指定レシピの材料一覧をID昇順（作成順）で返す。
func (r *PostgresRecipeRepo) ListIngredientsByRecipeID(ctx context.Context, recipeID int64) ([]*model.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, recipe_id, name FROM ingredients
		 WHERE recipe_id = $1 ORDER BY id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []*model.Ingredient{}
	for rows.Next() {
		ing := &model.Ingredient{}
		if err := rows.Scan(&ing.ID, &ing.UserID, &ing.RecipeID, &ing.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// insertIngredients はトランザクション内で材料行を挿入する。
func insertIngredients(ctx context.Context, tx *sql.Tx, userID string, recipeID int64, names []string) error {
	for _, name := range names {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingredients (user_id, recipe_id, name) VALUES ($1, $2, $3)`,
			userID, recipeID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}
	return nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
