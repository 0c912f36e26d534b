// Package storage persists the portal session and the pinned resources in a
// local SQLite database.
package storage

import (
	"context"
	"errors"

	"ffly/internal/model"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrNoSession = errors.New("storage: no session")
)

type Repository interface {
	LoadSession(ctx context.Context) (model.Session, error)
	SaveInstance(ctx context.Context, instanceURL, deviceID string) error
	SaveAccount(ctx context.Context, account model.Account) error
	ClearAccount(ctx context.Context) error

	ListPinned(ctx context.Context) ([]model.ResourceNode, error)
	Pin(ctx context.Context, node model.ResourceNode) error
	Unpin(ctx context.Context, id int64) error
}
