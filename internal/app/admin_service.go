package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dorm_maintenance/internal/domain/asset"
	"dorm_maintenance/internal/domain/errs"
	idb "dorm_maintenance/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrAssetGroupAlreadyExists = fmt.Errorf("%w: asset group with this name already exists", errs.ErrConflict)

type AdminService struct {
	groupRepo       asset.Repository
	adminTelegramID int64
	logger          *logrus.Entry
}

func NewAdminService(gr asset.Repository, adminID int64, logger *logrus.Entry) *AdminService {
	return &AdminService{
		groupRepo:       gr,
		adminTelegramID: adminID,
		logger:          logger,
	}
}

// Authorize checks that a chat user may run maintenance commands.
func (s *AdminService) Authorize(telegramID int64) error {
	if s.adminTelegramID == 0 || telegramID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// CreateAssetGroup registers a named group of dormitory assets.
func (s *AdminService) CreateAssetGroup(ctx context.Context, name string) (*asset.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: asset group name is required", errs.ErrInvalidArgument)
	}
	if len(name) > 255 {
		return nil, fmt.Errorf("%w: asset group name is too long", errs.ErrInvalidArgument)
	}

	g := &asset.Group{Name: name}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		if errors.Is(err, idb.ErrDuplicateAssetGroup) {
			return nil, ErrAssetGroupAlreadyExists
		}
		return nil, fmt.Errorf("failed to create asset group in repository: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"asset_group_id": g.ID, "name": g.Name}).Info("Asset group created")
	return g, nil
}

func (s *AdminService) GetAssetGroup(ctx context.Context, id int64) (*asset.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

func (s *AdminService) ListAssetGroups(ctx context.Context) ([]*asset.Group, error) {
	return s.groupRepo.ListAll(ctx)
}
