package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/recipeman/internal/model"
)

func TestMapIntegrityErrorRecipeNameConstraint(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "unique_recipe_name_for_user"}

	err := mapIntegrityError(pqErr)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateRecipeName {
		t.Errorf("code = %s, want %s", apiErr.Code, model.ErrCodeDuplicateRecipeName)
	}
	if apiErr.Message != "Recipe with such name already exists" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestMapIntegrityErrorUsernameConstraint(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "unique_username"}

	err := mapIntegrityError(pqErr)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateUsername {
		t.Errorf("code = %s, want %s", apiErr.Code, model.ErrCodeDuplicateUsername)
	}
}

func TestMapIntegrityErrorUnknownConstraintIsGeneric(t *testing.T) {
	// 個別認識しない整合性制約違反は汎用メッセージに丸めること
	pqErr := &pq.Error{Code: "23503", Constraint: "some_foreign_key"}

	err := mapIntegrityError(pqErr)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeConstraintViolation {
		t.Errorf("code = %s, want %s", apiErr.Code, model.ErrCodeConstraintViolation)
	}
	if apiErr.Message != "Bad request" {
		t.Errorf("message = %q, want Bad request", apiErr.Message)
	}
}

func TestMapIntegrityErrorIgnoresNonIntegrityErrors(t *testing.T) {
	// クラス23以外のpqエラーと非pqエラーはnilを返すこと
	if err := mapIntegrityError(&pq.Error{Code: "42601"}); err != nil {
		t.Errorf("syntax error should not map, got %v", err)
	}
	if err := mapIntegrityError(fmt.Errorf("connection refused")); err != nil {
		t.Errorf("plain error should not map, got %v", err)
	}
}

func TestMapIntegrityErrorWrappedError(t *testing.T) {
	// fmt.Errorfでラップされたpqエラーも認識すること
	wrapped := fmt.Errorf("failed to insert recipe: %w", &pq.Error{Code: "23505", Constraint: "unique_recipe_name_for_user"})

	err := mapIntegrityError(wrapped)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateRecipeName {
		t.Errorf("code = %s, want %s", apiErr.Code, model.ErrCodeDuplicateRecipeName)
	}
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"curry", "curry"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{"%_", `\%\_`},
	}

	for _, tt := range tests {
		if got := escapeLikePattern(tt.in); got != tt.want {
			t.Errorf("escapeLikePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
