package recipe

import "github.com/hitoshi/recipeman/internal/model"

// IngredientDiff は材料の現在集合を目標集合に一致させるための最小差分。
type IngredientDiff struct {
	// CreateNames は新規に作成する材料名。重複除去済み、初出順。
	CreateNames []string
	// DeleteIDs は削除する既存材料行のID。
	DeleteIDs []int64
}

// Empty は適用すべき変更がないことを返す。
func (d IngredientDiff) Empty() bool {
	return len(d.CreateNames) == 0 && len(d.DeleteIDs) == 0
}

// ReconcileIngredients は目標の材料名リストと現在の材料行から最小差分を計算する。
//
//  1. 目標リストの重複を除去する（初出順を保持）。
//  2. 目標に存在しない名前の既存行は削除対象。
//  3. 既存行に存在しない目標名は作成対象。
//  4. 両方に存在する名前の行はそのまま残す（行のIDを保持し、更新しない）。
//
// targetがnilまたは空の場合、既存行すべてが削除対象になる。
// 「フィールド省略＝変更なし」の判断は呼び出し側の責務であり、
// この関数を呼ばないことで表現する。
func ReconcileIngredients(current []*model.Ingredient, target []string) IngredientDiff {
	targetSet := make(map[string]struct{}, len(target))
	deduped := make([]string, 0, len(target))
	for _, name := range target {
		if _, ok := targetSet[name]; ok {
			continue
		}
		targetSet[name] = struct{}{}
		deduped = append(deduped, name)
	}

	currentSet := make(map[string]struct{}, len(current))
	diff := IngredientDiff{}
	for _, ing := range current {
		currentSet[ing.Name] = struct{}{}
		if _, ok := targetSet[ing.Name]; !ok {
			diff.DeleteIDs = append(diff.DeleteIDs, ing.ID)
		}
	}

	for _, name := range deduped {
		if _, ok := currentSet[name]; !ok {
			diff.CreateNames = append(diff.CreateNames, name)
		}
	}

	return diff
}
