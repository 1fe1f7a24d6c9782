package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dorm_maintenance/internal/domain/asset"
)

type AssetGroupRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewAssetGroupRepository(db *sql.DB, dialect Dialect) *AssetGroupRepository {
	return &AssetGroupRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *AssetGroupRepository) Create(ctx context.Context, g *asset.Group) error {
	query := `INSERT INTO asset_groups (name, created_at) VALUES ($1, $2) RETURNING id`
	now := dbTime(r.now())
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), g.Name, now).Scan(&g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAssetGroup
		}
		return fmt.Errorf("error creating asset group: %w", err)
	}
	g.CreatedAt = now
	return nil
}

func (r *AssetGroupRepository) GetByID(ctx context.Context, id int64) (*asset.Group, error) {
	query := `SELECT id, name, created_at FROM asset_groups WHERE id = $1`
	g := &asset.Group{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetGroupNotFound
		}
		return nil, fmt.Errorf("error getting asset group by ID: %w", err)
	}
	return g, nil
}

func (r *AssetGroupRepository) ListAll(ctx context.Context) ([]*asset.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM asset_groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing asset groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*asset.Group, 0)
	for rows.Next() {
		g := &asset.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning asset group: %w", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset groups: %w", err)
	}
	return groups, nil
}
