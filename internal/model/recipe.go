// Package model はドメインモデルを定義する。
package model

import "time"

// MaxRecipeNameLength はレシピ名の最大長。
const MaxRecipeNameLength = 255

// Recipe はユーザーが所有するレシピを表す。
// (user_id, name)の組はDB制約unique_recipe_name_for_userで一意。
// IDは連番のため、ID昇順は作成順と一致する。
type Recipe struct {
	ID          int64
	UserID      string
	Name        string
	Description string
	Ingredients []*Ingredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ingredient はレシピに属する材料を表す。
// ライフサイクルは所属レシピに完全に従属し、レシピの作成・更新の
// 副作用としてのみ作成・削除される。UserIDはレシピ所有者の非正規化コピー。
type Ingredient struct {
	ID       int64
	UserID   string
	RecipeID int64
	Name     string
}
