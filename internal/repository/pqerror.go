package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/recipeman/internal/model"
)

// integrityViolationClass はPostgreSQLの整合性制約違反のエラークラス。
const integrityViolationClass = "23"

// mapIntegrityError はDBの整合性制約違反を*model.APIErrorに変換する。
// 個別に認識する制約はエラーコードを特定し、それ以外の制約違反は
// 汎用のCONSTRAINT_VIOLATIONに丸める。整合性制約違反でない場合はnilを返す。
func mapIntegrityError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	if pqErr.Code.Class() != integrityViolationClass {
		return nil
	}

	switch pqErr.Constraint {
	case "unique_recipe_name_for_user":
		return model.NewDuplicateRecipeNameError()
	case "unique_username":
		return model.NewDuplicateUsernameError()
	default:
		return model.NewConstraintViolationError()
	}
}

// escapeLikePattern はLIKE/ILIKEパターンのメタ文字をエスケープする。
// 検索文字列中の % と _ をリテラルとして扱うため。
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
