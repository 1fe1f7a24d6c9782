package asset

import (
	"context"
)

// Repository defines the operations for persisting and retrieving asset groups.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListAll(ctx context.Context) ([]*Group, error)
}
