package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/utils"
)

type ConstituencyService interface {
	Create(ctx context.Context, req *dto.CreateConstituencyRequest) (*models.Constituency, error)
	// BulkCreate creates each item independently and reports failures per item.
	BulkCreate(ctx context.Context, items []dto.CreateConstituencyRequest) *dto.BulkResult[models.Constituency]
	List(ctx context.Context, opts repositories.ListOptions) ([]models.Constituency, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error)
	GetInfo(ctx context.Context, id primitive.ObjectID) (*dto.ConstituencyInfo, error)
	Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdateConstituencyRequest) (*models.Constituency, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type constituencyService struct {
	repo   *repositories.Repository
	logger *zap.Logger
}

func NewConstituencyService(repo *repositories.Repository, logger *zap.Logger) ConstituencyService {
	return &constituencyService{repo: repo, logger: logger}
}

func (s *constituencyService) Create(ctx context.Context, req *dto.CreateConstituencyRequest) (*models.Constituency, error) {
	c := &models.Constituency{
		Name:       strings.TrimSpace(req.Name),
		Code:       strings.TrimSpace(req.Code),
		Panchayats: []primitive.ObjectID{},
	}

	if err := s.checkUnique(ctx, c.Name, c.Code, primitive.NilObjectID); err != nil {
		return nil, err
	}

	if req.MLAID != "" {
		mlaID, err := parseID(req.MLAID, "MLA")
		if err != nil {
			return nil, err
		}
		if err := s.checkMLA(ctx, mlaID, primitive.NilObjectID); err != nil {
			return nil, err
		}
		c.MLAID = &mlaID
	}

	if err := s.repo.Constituencies.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Constituency name or code already exists")
		}
		s.logger.Error("failed to create constituency", zap.String("name", c.Name), zap.Error(err))
		return nil, Internal("Failed to create constituency", err)
	}
	return c, nil
}

func (s *constituencyService) BulkCreate(ctx context.Context, items []dto.CreateConstituencyRequest) *dto.BulkResult[models.Constituency] {
	result := &dto.BulkResult[models.Constituency]{
		Created: []models.Constituency{},
		Errors:  []dto.BulkError{},
	}

	for i := range items {
		item := &items[i]
		if err := utils.ValidateStruct(item); err != nil {
			result.Errors = append(result.Errors, dto.BulkError{Index: i, Name: item.Name, Message: utils.FormatValidationError(err)})
			continue
		}
		c, err := s.Create(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, dto.BulkError{Index: i, Name: item.Name, Message: errorMessage(err)})
			continue
		}
		result.Created = append(result.Created, *c)
	}

	s.logger.Info("bulk constituency create",
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)),
	)
	return result
}

func (s *constituencyService) List(ctx context.Context, opts repositories.ListOptions) ([]models.Constituency, int64, error) {
	list, total, err := s.repo.Constituencies.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list constituencies", zap.Error(err))
		return nil, 0, Internal("Failed to list constituencies", err)
	}
	return list, total, nil
}

func (s *constituencyService) Get(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	c, err := s.repo.Constituencies.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "constituency")
	}
	return c, nil
}

func (s *constituencyService) GetInfo(ctx context.Context, id primitive.ObjectID) (*dto.ConstituencyInfo, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	info := &dto.ConstituencyInfo{Constituency: c}

	if c.MLAID != nil {
		mla, err := s.repo.Users.GetByID(ctx, *c.MLAID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Error("failed to load MLA", zap.String("constituency_id", id.Hex()), zap.Error(err))
			return nil, Internal("Failed to load constituency info", err)
		}
		info.MLA = dto.NewUserSummary(mla)
	}

	info.TotalVoters, info.ActiveVoters, err = s.repo.UserDetails.CountVoters(ctx, id)
	if err != nil {
		s.logger.Error("failed to count voters", zap.String("constituency_id", id.Hex()), zap.Error(err))
		return nil, Internal("Failed to load constituency info", err)
	}

	panchayats, err := s.repo.Panchayats.List(ctx, &id)
	if err != nil {
		s.logger.Error("failed to list panchayats", zap.String("constituency_id", id.Hex()), zap.Error(err))
		return nil, Internal("Failed to load constituency info", err)
	}
	info.PanchayatCount = len(panchayats)
	for _, p := range panchayats {
		info.WardCount += len(p.WardList)
	}
	return info, nil
}

func (s *constituencyService) Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdateConstituencyRequest) (*models.Constituency, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, code := c.Name, c.Code
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		code = strings.TrimSpace(*req.Code)
	}
	if name == "" || code == "" {
		return nil, BadRequest("Constituency name and code cannot be empty")
	}
	if err := s.checkUnique(ctx, name, code, id); err != nil {
		return nil, err
	}
	c.Name, c.Code = name, code

	if req.MLAID != nil {
		if *req.MLAID == "" {
			c.MLAID = nil
		} else {
			mlaID, err := parseID(*req.MLAID, "MLA")
			if err != nil {
				return nil, err
			}
			if err := s.checkMLA(ctx, mlaID, id); err != nil {
				return nil, err
			}
			c.MLAID = &mlaID
		}
	}

	if err := s.repo.Constituencies.Update(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Constituency name or code already exists")
		}
		s.logger.Error("failed to update constituency", zap.String("id", id.Hex()), zap.Error(err))
		return nil, Internal("Failed to update constituency", err)
	}
	return c, nil
}

func (s *constituencyService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Panchayats.CountByConstituency(ctx, id)
	if err != nil {
		s.logger.Error("failed to count panchayats", zap.String("id", id.Hex()), zap.Error(err))
		return Internal("Failed to delete constituency", err)
	}
	if count > 0 {
		return BadRequest("Cannot delete constituency while panchayats still reference it")
	}

	if err := s.repo.Constituencies.Delete(ctx, id); err != nil {
		return notFoundOr(err, "constituency")
	}
	return nil
}

func (s *constituencyService) checkUnique(ctx context.Context, name, code string, exclude primitive.ObjectID) error {
	taken, err := s.repo.Constituencies.ExistsByName(ctx, name, exclude)
	if err != nil {
		return Internal("Failed to check constituency name", err)
	}
	if taken {
		return BadRequest("Constituency name already exists")
	}

	taken, err = s.repo.Constituencies.ExistsByCode(ctx, code, exclude)
	if err != nil {
		return Internal("Failed to check constituency code", err)
	}
	if taken {
		return BadRequest("Constituency code already exists")
	}
	return nil
}

// checkMLA requires mlaID to be an mlastaff user not already assigned to a
// constituency other than self.
func (s *constituencyService) checkMLA(ctx context.Context, mlaID, self primitive.ObjectID) error {
	mla, err := s.repo.Users.GetByID(ctx, mlaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return BadRequest("MLA user not found")
		}
		return Internal("Failed to load MLA", err)
	}
	if mla.Role != models.RoleMLAStaff {
		return BadRequest("Referenced user does not have the mlastaff role")
	}

	assigned, err := s.repo.Constituencies.GetByMLA(ctx, mlaID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return Internal("Failed to check MLA assignment", err)
	case assigned.ID != self:
		return BadRequest("MLA is already assigned to another constituency")
	}
	return nil
}

// errorMessage is the client-facing text of err.
func errorMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
