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
)

type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentView, error)
	List(ctx context.Context) ([]dto.DepartmentView, error)
	Get(ctx context.Context, id primitive.ObjectID) (*dto.DepartmentView, error)
	Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentView, error)
	// Delete removes the department's employees before the department itself.
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddEmployee(ctx context.Context, actor Actor, departmentID, userID primitive.ObjectID) (*dto.EmployeeView, error)
	ListEmployees(ctx context.Context, actor Actor, departmentID primitive.ObjectID) ([]dto.EmployeeView, error)
	RemoveEmployee(ctx context.Context, actor Actor, employeeID primitive.ObjectID) error
}

type departmentService struct {
	repo   *repositories.Repository
	logger *zap.Logger
}

func NewDepartmentService(repo *repositories.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentView, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	headID, err := parseID(req.HeadID, "head")
	if err != nil {
		return nil, err
	}
	head, err := s.checkHead(ctx, headID, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}

	d := &models.Department{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		HeadID:      headID,
	}
	if err := s.repo.Departments.Create(ctx, d); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Department name already exists")
		}
		s.logger.Error("failed to create department", zap.String("name", name), zap.Error(err))
		return nil, Internal("Failed to create department", err)
	}
	return &dto.DepartmentView{Department: *d, Head: dto.NewUserSummary(head)}, nil
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentView, error) {
	list, err := s.repo.Departments.List(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", zap.Error(err))
		return nil, Internal("Failed to list departments", err)
	}

	headIDs := make([]primitive.ObjectID, 0, len(list))
	for _, d := range list {
		headIDs = append(headIDs, d.HeadID)
	}
	heads := map[primitive.ObjectID]*models.User{}
	if len(headIDs) > 0 {
		users, err := s.repo.Users.GetByIDs(ctx, headIDs)
		if err != nil {
			s.logger.Warn("failed to populate department heads", zap.Error(err))
		}
		for i := range users {
			heads[users[i].ID] = &users[i]
		}
	}

	views := make([]dto.DepartmentView, 0, len(list))
	for _, d := range list {
		views = append(views, dto.DepartmentView{Department: d, Head: dto.NewUserSummary(heads[d.HeadID])})
	}
	return views, nil
}

func (s *departmentService) Get(ctx context.Context, id primitive.ObjectID) (*dto.DepartmentView, error) {
	d, err := s.repo.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department")
	}
	head, err := s.repo.Users.GetByID(ctx, d.HeadID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Warn("failed to populate department head", zap.String("id", id.Hex()), zap.Error(err))
	}
	return &dto.DepartmentView{Department: *d, Head: dto.NewUserSummary(head)}, nil
}

func (s *departmentService) Update(ctx context.Context, id primitive.ObjectID, req *dto.UpdateDepartmentRequest) (*dto.DepartmentView, error) {
	d, err := s.repo.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, BadRequest("Department name cannot be empty")
		}
		if err := s.checkName(ctx, name, id); err != nil {
			return nil, err
		}
		d.Name = name
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}
	if req.HeadID != nil {
		headID, err := parseID(*req.HeadID, "head")
		if err != nil {
			return nil, err
		}
		if _, err := s.checkHead(ctx, headID, id); err != nil {
			return nil, err
		}
		d.HeadID = headID
	}

	if err := s.repo.Departments.Update(ctx, d); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BadRequest("Department name already exists")
		}
		s.logger.Error("failed to update department", zap.String("id", id.Hex()), zap.Error(err))
		return nil, Internal("Failed to update department", err)
	}
	return s.Get(ctx, id)
}

func (s *departmentService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.repo.Departments.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "department")
	}

	removed, err := s.repo.DepartmentEmployees.DeleteByDepartment(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete department employees", zap.String("id", id.Hex()), zap.Error(err))
		return Internal("Failed to delete department", err)
	}
	if err := s.repo.Departments.Delete(ctx, id); err != nil {
		return notFoundOr(err, "department")
	}

	s.logger.Info("department deleted", zap.String("id", id.Hex()), zap.Int64("employees_removed", removed))
	return nil
}

func (s *departmentService) AddEmployee(ctx context.Context, actor Actor, departmentID, userID primitive.ObjectID) (*dto.EmployeeView, error) {
	if err := s.checkManager(ctx, actor, departmentID); err != nil {
		return nil, err
	}

	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if !user.Role.CanJoinDepartment() {
		return nil, BadRequest("Only users with the dept_staff role can be added to a department")
	}

	if _, err := s.repo.DepartmentEmployees.GetByUser(ctx, userID); err == nil {
		return nil, BadRequest("User already belongs to a department")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, Internal("Failed to check department membership", err)
	}

	employee := &models.DepartmentEmployee{UserID: userID, DepartmentID: departmentID}
	if err := s.repo.DepartmentEmployees.Create(ctx, employee); err != nil {
		s.logger.Error("failed to add employee", zap.String("department_id", departmentID.Hex()), zap.Error(err))
		return nil, Internal("Failed to add employee", err)
	}
	return &dto.EmployeeView{DepartmentEmployee: *employee, User: dto.NewUserSummary(user)}, nil
}

func (s *departmentService) ListEmployees(ctx context.Context, actor Actor, departmentID primitive.ObjectID) ([]dto.EmployeeView, error) {
	if err := s.checkManager(ctx, actor, departmentID); err != nil {
		return nil, err
	}

	list, err := s.repo.DepartmentEmployees.ListByDepartment(ctx, departmentID)
	if err != nil {
		s.logger.Error("failed to list employees", zap.String("department_id", departmentID.Hex()), zap.Error(err))
		return nil, Internal("Failed to list employees", err)
	}

	userIDs := make([]primitive.ObjectID, 0, len(list))
	for _, e := range list {
		userIDs = append(userIDs, e.UserID)
	}
	users := map[primitive.ObjectID]*models.User{}
	if len(userIDs) > 0 {
		found, err := s.repo.Users.GetByIDs(ctx, userIDs)
		if err != nil {
			s.logger.Warn("failed to populate employees", zap.Error(err))
		}
		for i := range found {
			users[found[i].ID] = &found[i]
		}
	}

	views := make([]dto.EmployeeView, 0, len(list))
	for _, e := range list {
		views = append(views, dto.EmployeeView{DepartmentEmployee: e, User: dto.NewUserSummary(users[e.UserID])})
	}
	return views, nil
}

func (s *departmentService) RemoveEmployee(ctx context.Context, actor Actor, employeeID primitive.ObjectID) error {
	employee, err := s.repo.DepartmentEmployees.GetByID(ctx, employeeID)
	if err != nil {
		return notFoundOr(err, "employee")
	}
	if err := s.checkManager(ctx, actor, employee.DepartmentID); err != nil {
		return err
	}
	if err := s.repo.DepartmentEmployees.Delete(ctx, employeeID); err != nil {
		return notFoundOr(err, "employee")
	}
	return nil
}

func (s *departmentService) checkName(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := s.repo.Departments.GetByName(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return Internal("Failed to check department name", err)
	case existing.ID != self:
		return BadRequest("Department name already exists")
	}
	return nil
}

// checkHead requires headID to hold the dept role and to lead no department
// other than self.
func (s *departmentService) checkHead(ctx context.Context, headID, self primitive.ObjectID) (*models.User, error) {
	head, err := s.repo.Users.GetByID(ctx, headID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, BadRequest("Head user not found")
		}
		return nil, Internal("Failed to load head user", err)
	}
	if !head.Role.CanLeadDepartment() {
		return nil, BadRequest("Department head must have the dept role")
	}

	led, err := s.repo.Departments.GetByHead(ctx, headID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return head, nil
	case err != nil:
		return nil, Internal("Failed to check department head", err)
	case led.ID != self:
		return nil, BadRequest("User already heads another department")
	}
	return head, nil
}

// checkManager lets admins manage any department and heads only their own.
func (s *departmentService) checkManager(ctx context.Context, actor Actor, departmentID primitive.ObjectID) error {
	d, err := s.repo.Departments.GetByID(ctx, departmentID)
	if err != nil {
		return notFoundOr(err, "department")
	}
	if actor.Role.IsAdmin() || (actor.Role.CanLeadDepartment() && d.HeadID == actor.ID) {
		return nil
	}
	return Forbidden("Only the department head or an admin can manage its employees")
}
