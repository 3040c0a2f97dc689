package domain

import "errors"

var (
	ErrInvalidCategoryName = errors.New("invalid category name")
	ErrDuplicateCategory   = errors.New("category name already exists for user")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrDuplicateMessage    = errors.New("message already ingested for account")
	ErrForbidden           = errors.New("resource belongs to another user")
)
