package domain

import "errors"

var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrDuplicateUser        = errors.New("user email already registered")
	ErrDuplicateAccount     = errors.New("mailbox account already linked")
	ErrPrimaryAccountExists = errors.New("user already has a primary account")
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("mailbox account not found")
)
