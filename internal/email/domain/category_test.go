package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestValidateCategoryNameAccepts(t *testing.T) {
	names := []string{
		"Valid Category Name",
		"Work & Personal",
		"Finance (2024)",
		"Project: Alpha",
		"Test-Category",
		"Category_Name",
		"a/b",
		strings.Repeat("a", MaxCategoryNameLength),
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			be.Err(t, ValidateCategoryName(name), nil)
		})
	}
}

func TestValidateCategoryNameRejects(t *testing.T) {
	names := map[string]string{
		"empty":           "",
		"too long":        strings.Repeat("a", MaxCategoryNameLength+1),
		"markup":          "<script>alert(1)</script>",
		"newline":         "Category\nName",
		"tab":             "Category\tName",
		"slashes":         "////Category////",
		"whitespace only": "  ",
		"leading space":   " Work",
		"trailing space":  "Work ",
	}
	for label, name := range names {
		t.Run(label, func(t *testing.T) {
			err := ValidateCategoryName(name)
			be.True(t, errors.Is(err, ErrInvalidCategoryName))
		})
	}
}
