package service

import (
	"errors"

	"github.com/Skotchmaster/catalog_api/internal/policy"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = policy.ErrForbidden
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	ErrUnauthenticated    = errors.New("unauthenticated")
)
