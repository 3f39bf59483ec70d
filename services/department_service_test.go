package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civictrack-be/dto"
	"civictrack-be/models"
)

func TestDepartmentCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service(Options{}).Departments
	head := f.addUser(models.RoleDept, "head@example.com")
	otherHead := f.addUser(models.RoleDept, "other@example.com")
	citizen := f.addUser(models.RoleCitizen, "asha@example.com")

	view, err := svc.Create(ctx, &dto.CreateDepartmentRequest{Name: "Water Supply", HeadID: head.ID.Hex()})
	require.NoError(t, err)
	require.NotNil(t, view.Head)
	assert.Equal(t, head.ID, view.Head.ID)

	tests := []struct {
		name string
		req  dto.CreateDepartmentRequest
		msg  string
	}{
		{"name differs only in case", dto.CreateDepartmentRequest{Name: "water supply", HeadID: otherHead.ID.Hex()}, "Department name already exists"},
		{"head already leads one", dto.CreateDepartmentRequest{Name: "Health", HeadID: head.ID.Hex()}, "User already heads another department"},
		{"head without dept role", dto.CreateDepartmentRequest{Name: "Health", HeadID: citizen.ID.Hex()}, "Department head must have the dept role"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			appErr := requireStatus(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestDepartmentUpdateKeepsOwnHead(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	head := f.addUser(models.RoleDept, "head@example.com")
	d := f.addDepartment("Water Supply", head.ID)
	svc := f.service(Options{}).Departments

	name, headID := "Water Board", head.ID.Hex()
	view, err := svc.Update(ctx, d.ID, &dto.UpdateDepartmentRequest{Name: &name, HeadID: &headID})
	require.NoError(t, err)
	assert.Equal(t, "Water Board", view.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "head@example.com", list[0].Head.Email)
}

func TestDepartmentEmployees(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	head := f.addUser(models.RoleDept, "head@example.com")
	otherHead := f.addUser(models.RoleDept, "other@example.com")
	staff := f.addUser(models.RoleDeptStaff, "staff@example.com")
	citizen := f.addUser(models.RoleCitizen, "asha@example.com")
	water := f.addDepartment("Water Supply", head.ID)
	health := f.addDepartment("Health", otherHead.ID)
	svc := f.service(Options{}).Departments
	asHead := Actor{ID: head.ID, Role: models.RoleDept}

	_, err := svc.AddEmployee(ctx, Actor{ID: otherHead.ID, Role: models.RoleDept}, water.ID, staff.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.AddEmployee(ctx, asHead, water.ID, citizen.ID)
	requireStatus(t, err, http.StatusBadRequest)

	employee, err := svc.AddEmployee(ctx, asHead, water.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, employee.User.ID)

	_, err = svc.AddEmployee(ctx, Actor{Role: models.RoleAdmin}, health.ID, staff.ID)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "User already belongs to a department", appErr.Message)

	list, err := svc.ListEmployees(ctx, asHead, water.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "staff@example.com", list[0].User.Email)

	require.NoError(t, svc.RemoveEmployee(ctx, asHead, employee.ID))
	list, err = svc.ListEmployees(ctx, asHead, water.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDepartmentDeleteRemovesEmployees(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	head := f.addUser(models.RoleDept, "head@example.com")
	water := f.addDepartment("Water Supply", head.ID)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		staff := f.addUser(models.RoleDeptStaff, email)
		require.NoError(t, f.employees.Create(ctx, &models.DepartmentEmployee{UserID: staff.ID, DepartmentID: water.ID}))
	}
	svc := f.service(Options{}).Departments

	require.NoError(t, svc.Delete(ctx, water.ID))

	left, err := f.employees.ListByDepartment(ctx, water.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = svc.Get(ctx, water.ID)
	requireStatus(t, err, http.StatusNotFound)
}
