package normalize

import "errors"

var (
	// ErrNameRequired indicates a record whose name is empty after cleaning.
	ErrNameRequired = errors.New("record name is required")

	// ErrNoCategories indicates a vocabulary with no categories.
	ErrNoCategories = errors.New("vocabulary has no categories")

	// ErrDuplicateCategory indicates two vocabulary entries sharing a name.
	ErrDuplicateCategory = errors.New("duplicate category name")

	// ErrCategoryNameRequired indicates a vocabulary entry without a name.
	ErrCategoryNameRequired = errors.New("category name is required")
)
