package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/services"
	"civictrack-be/utils"
)

type DepartmentController struct {
	departments services.DepartmentService
	logger      *zap.Logger
}

func NewDepartmentController(departments services.DepartmentService, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{departments: departments, logger: logger}
}

func (h *DepartmentController) List(c *gin.Context) {
	items, err := h.departments.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Departments retrieved", items)
}

func (h *DepartmentController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	dept, err := h.departments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Department retrieved", dept)
}

// Create godoc
//
//	@Summary	Create a department
//	@Tags		departments
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.CreateDepartmentRequest	true	"Department"
//	@Success	201		{object}	utils.Response
//	@Failure	409		{object}	utils.Response
//	@Router		/departments [post]
func (h *DepartmentController) Create(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.departments.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.Created(c, "Department created successfully", dept)
}

func (h *DepartmentController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.departments.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Department updated successfully", dept)
}

// Delete removes the department together with its employees.
func (h *DepartmentController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.departments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Department deleted successfully", nil)
}

func (h *DepartmentController) ListEmployees(c *gin.Context) {
	actor, deptID, ok := actorAndID(c)
	if !ok {
		return
	}

	items, err := h.departments.ListEmployees(c.Request.Context(), actor, deptID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Employees retrieved", items)
}

// AddEmployee godoc
//
//	@Summary	Add an employee to a department
//	@Tags		departments
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		id		path		string					true	"Department id"
//	@Param		body	body		dto.AddEmployeeRequest	true	"User to add"
//	@Success	201		{object}	utils.Response
//	@Failure	403		{object}	utils.Response
//	@Router		/departments/{id}/employees [post]
func (h *DepartmentController) AddEmployee(c *gin.Context) {
	actor, deptID, ok := actorAndID(c)
	if !ok {
		return
	}
	var req dto.AddEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := mustID(c, req.UserID)
	if !ok {
		return
	}

	employee, err := h.departments.AddEmployee(c.Request.Context(), actor, deptID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.Created(c, "Employee added successfully", employee)
}

func (h *DepartmentController) RemoveEmployee(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	employeeID, ok := paramID(c, "employeeId")
	if !ok {
		return
	}

	if err := h.departments.RemoveEmployee(c.Request.Context(), actor, employeeID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Employee removed successfully", nil)
}
