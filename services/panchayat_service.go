package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/utils"
)

type PanchayatService interface {
	Create(ctx context.Context, req *dto.CreatePanchayatRequest) (*models.Panchayat, error)
	BulkCreate(ctx context.Context, items []dto.CreatePanchayatRequest) *dto.BulkResult[models.Panchayat]
	List(ctx context.Context, constituencyID *primitive.ObjectID) ([]dto.PanchayatView, error)
	Get(ctx context.Context, id primitive.ObjectID) (*dto.PanchayatView, error)
	Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdatePanchayatRequest) (*models.Panchayat, error)
	AddWards(ctx context.Context, id primitive.ObjectID, req *dto.AddWardsRequest) (*models.Panchayat, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type panchayatService struct {
	repo   *repositories.Repository
	logger *zap.Logger
}

func NewPanchayatService(repo *repositories.Repository, logger *zap.Logger) PanchayatService {
	return &panchayatService{repo: repo, logger: logger}
}

func (s *panchayatService) Create(ctx context.Context, req *dto.CreatePanchayatRequest) (*models.Panchayat, error) {
	constituencyID, err := parseID(req.ConstituencyID, "constituency")
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Constituencies.GetByID(ctx, constituencyID); err != nil {
		return nil, notFoundOr(err, "constituency")
	}

	wards, err := cleanWards(req.WardList, nil)
	if err != nil {
		return nil, err
	}

	p := &models.Panchayat{
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.TrimSpace(req.Code),
		ConstituencyID: constituencyID,
		WardList:       wards,
	}
	if err := s.checkUnique(ctx, p, primitive.NilObjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Panchayats.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Panchayat code already exists")
		}
		s.logger.Error("failed to create panchayat", zap.String("name", p.Name), zap.Error(err))
		return nil, Internal("Failed to create panchayat", err)
	}

	if err := s.repo.Constituencies.AddPanchayat(ctx, constituencyID, p.ID); err != nil {
		s.logger.Error("failed to link panchayat to constituency",
			zap.String("panchayat_id", p.ID.Hex()),
			zap.String("constituency_id", constituencyID.Hex()),
			zap.Error(err),
		)
		if delErr := s.repo.Panchayats.Delete(context.WithoutCancel(ctx), p.ID); delErr != nil {
			s.logger.Error("unlinked panchayat left after failed create", zap.String("panchayat_id", p.ID.Hex()), zap.Error(delErr))
		}
		return nil, Internal("Failed to link panchayat to constituency", err)
	}
	return p, nil
}

func (s *panchayatService) BulkCreate(ctx context.Context, items []dto.CreatePanchayatRequest) *dto.BulkResult[models.Panchayat] {
	result := &dto.BulkResult[models.Panchayat]{
		Created: []models.Panchayat{},
		Errors:  []dto.BulkError{},
	}

	for i := range items {
		item := &items[i]
		if err := utils.ValidateStruct(item); err != nil {
			result.Errors = append(result.Errors, dto.BulkError{Index: i, Name: item.Name, Message: utils.FormatValidationError(err)})
			continue
		}
		p, err := s.Create(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, dto.BulkError{Index: i, Name: item.Name, Message: errorMessage(err)})
			continue
		}
		result.Created = append(result.Created, *p)
	}

	s.logger.Info("bulk panchayat create",
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)),
	)
	return result
}

func (s *panchayatService) List(ctx context.Context, constituencyID *primitive.ObjectID) ([]dto.PanchayatView, error) {
	list, err := s.repo.Panchayats.List(ctx, constituencyID)
	if err != nil {
		s.logger.Error("failed to list panchayats", zap.Error(err))
		return nil, Internal("Failed to list panchayats", err)
	}

	names := map[primitive.ObjectID]*dto.RefSummary{}
	views := make([]dto.PanchayatView, 0, len(list))
	for _, p := range list {
		ref, ok := names[p.ConstituencyID]
		if !ok {
			ref = s.constituencyRef(ctx, p.ConstituencyID)
			names[p.ConstituencyID] = ref
		}
		views = append(views, dto.PanchayatView{Panchayat: p, Constituency: ref})
	}
	return views, nil
}

func (s *panchayatService) Get(ctx context.Context, id primitive.ObjectID) (*dto.PanchayatView, error) {
	p, err := s.repo.Panchayats.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "panchayat")
	}
	return &dto.PanchayatView{Panchayat: *p, Constituency: s.constituencyRef(ctx, p.ConstituencyID)}, nil
}

func (s *panchayatService) Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdatePanchayatRequest) (*models.Panchayat, error) {
	p, err := s.repo.Panchayats.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "panchayat")
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		p.Code = strings.TrimSpace(*req.Code)
	}
	if p.Name == "" || p.Code == "" {
		return nil, BadRequest("Panchayat name and code cannot be empty")
	}
	if req.WardList != nil {
		wards, err := cleanWards(req.WardList, nil)
		if err != nil {
			return nil, err
		}
		p.WardList = wards
	}
	if err := s.checkUnique(ctx, p, id); err != nil {
		return nil, err
	}

	if err := s.repo.Panchayats.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Panchayat code already exists")
		}
		s.logger.Error("failed to update panchayat", zap.String("id", id.Hex()), zap.Error(err))
		return nil, Internal("Failed to update panchayat", err)
	}
	return p, nil
}

func (s *panchayatService) AddWards(ctx context.Context, id primitive.ObjectID, req *dto.AddWardsRequest) (*models.Panchayat, error) {
	p, err := s.repo.Panchayats.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "panchayat")
	}

	wards, err := cleanWards(req.Wards, p.WardList)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Panchayats.AddWards(ctx, id, wards); err != nil {
		return nil, notFoundOr(err, "panchayat")
	}

	p.WardList = append(p.WardList, wards...)
	return p, nil
}

func (s *panchayatService) Delete(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.repo.Panchayats.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "panchayat")
	}

	if err := s.repo.Panchayats.Delete(ctx, id); err != nil {
		return notFoundOr(err, "panchayat")
	}
	if err := s.repo.Constituencies.RemovePanchayat(ctx, p.ConstituencyID, id); err != nil {
		s.logger.Warn("failed to unlink panchayat from constituency",
			zap.String("panchayat_id", id.Hex()),
			zap.String("constituency_id", p.ConstituencyID.Hex()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *panchayatService) checkUnique(ctx context.Context, p *models.Panchayat, exclude primitive.ObjectID) error {
	taken, err := s.repo.Panchayats.ExistsByName(ctx, p.ConstituencyID, p.Name, exclude)
	if err != nil {
		return Internal("Failed to check panchayat name", err)
	}
	if taken {
		return BadRequest("Panchayat name already exists in this constituency")
	}

	taken, err = s.repo.Panchayats.ExistsByCode(ctx, p.Code, exclude)
	if err != nil {
		return Internal("Failed to check panchayat code", err)
	}
	if taken {
		return BadRequest("Panchayat code already exists")
	}
	return nil
}

func (s *panchayatService) constituencyRef(ctx context.Context, id primitive.ObjectID) *dto.RefSummary {
	c, err := s.repo.Constituencies.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn("failed to populate constituency", zap.String("id", id.Hex()), zap.Error(err))
		}
		return nil
	}
	return &dto.RefSummary{ID: c.ID, Name: c.Name, Code: c.Code}
}

// cleanWards trims wards and rejects empty lists, blank fields, and ids
// repeated within wards or already present in existing.
func cleanWards(wards, existing []models.Ward) ([]models.Ward, error) {
	if len(wards) == 0 {
		return nil, BadRequest("At least one ward is required")
	}

	seen := make(map[string]bool, len(wards)+len(existing))
	for _, w := range existing {
		seen[w.WardID] = true
	}

	out := make([]models.Ward, 0, len(wards))
	for _, w := range wards {
		w.WardID = strings.TrimSpace(w.WardID)
		w.WardName = strings.TrimSpace(w.WardName)
		if w.WardID == "" || w.WardName == "" {
			return nil, BadRequest("Each ward needs a ward_id and a ward_name")
		}
		if seen[w.WardID] {
			return nil, BadRequest(fmt.Sprintf("Duplicate ward_id %q", w.WardID))
		}
		seen[w.WardID] = true
		out = append(out, w)
	}
	return out, nil
}
