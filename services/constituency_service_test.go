package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
)

func TestConstituencyCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service(Options{}).Constituencies
	mla := f.addUser(models.RoleMLAStaff, "mla@example.com")
	citizen := f.addUser(models.RoleCitizen, "asha@example.com")

	c, err := svc.Create(ctx, &dto.CreateConstituencyRequest{Name: " North ", Code: "N-01", MLAID: mla.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, "North", c.Name)
	require.NotNil(t, c.MLAID)
	assert.Equal(t, mla.ID, *c.MLAID)
	assert.Empty(t, c.Panchayats)

	tests := []struct {
		name string
		req  dto.CreateConstituencyRequest
		msg  string
	}{
		{"duplicate name", dto.CreateConstituencyRequest{Name: "North", Code: "N-02"}, "Constituency name already exists"},
		{"duplicate code", dto.CreateConstituencyRequest{Name: "East", Code: "N-01"}, "Constituency code already exists"},
		{"mla already assigned", dto.CreateConstituencyRequest{Name: "East", Code: "E-01", MLAID: mla.ID.Hex()}, "MLA is already assigned to another constituency"},
		{"mla without role", dto.CreateConstituencyRequest{Name: "East", Code: "E-01", MLAID: citizen.ID.Hex()}, "Referenced user does not have the mlastaff role"},
		{"unknown mla", dto.CreateConstituencyRequest{Name: "East", Code: "E-01", MLAID: primitive.NewObjectID().Hex()}, "MLA user not found"},
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

func TestConstituencyBulkCreatePartialSuccess(t *testing.T) {
	f := newFixture()
	f.addConstituency("Existing", nil)
	svc := f.service(Options{}).Constituencies

	result := svc.BulkCreate(context.Background(), []dto.CreateConstituencyRequest{
		{Name: "North", Code: "N-01"},
		{Name: "Existing", Code: "X-01"},
		{Name: "", Code: "B-01"},
		{Name: "South", Code: "S-01"},
		{Name: "West", Code: "N-01"},
	})

	require.Len(t, result.Created, 2)
	assert.Equal(t, "North", result.Created[0].Name)
	assert.Equal(t, "South", result.Created[1].Name)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "Constituency name already exists", result.Errors[0].Message)
	assert.Equal(t, 2, result.Errors[1].Index)
	assert.Equal(t, "name is required", result.Errors[1].Message)
	assert.Equal(t, 4, result.Errors[2].Index)
	assert.Equal(t, "Constituency code already exists", result.Errors[2].Message)
}

func TestConstituencyGetInfo(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mla := f.addUser(models.RoleMLAStaff, "mla@example.com")
	c := f.addConstituency("North", &mla.ID)
	p := f.addPanchayat("Green", c.ID, "W1", "W2")
	f.addPanchayat("Blue", c.ID, "W1")
	verified := f.citizen("asha@example.com", c, p, "W1")
	require.NoError(t, f.users.MarkVerified(ctx, verified.ID))
	f.citizen("ravi@example.com", c, p, "W2")

	info, err := f.service(Options{}).Constituencies.GetInfo(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, info.MLA)
	assert.Equal(t, mla.ID, info.MLA.ID)
	assert.EqualValues(t, 2, info.TotalVoters)
	assert.EqualValues(t, 1, info.ActiveVoters)
	assert.Equal(t, 2, info.PanchayatCount)
	assert.Equal(t, 3, info.WardCount)
}

func TestConstituencyUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mla := f.addUser(models.RoleMLAStaff, "mla@example.com")
	c := f.addConstituency("North", &mla.ID)
	f.addConstituency("South", nil)
	svc := f.service(Options{}).Constituencies

	name := "North Rural"
	got, err := svc.Update(ctx, c.ID, &dto.UpdateConstituencyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "North Rural", got.Name)
	require.NotNil(t, got.MLAID, "re-saving keeps the MLA")

	taken := "South"
	_, err = svc.Update(ctx, c.ID, &dto.UpdateConstituencyRequest{Name: &taken})
	requireStatus(t, err, http.StatusBadRequest)

	unassign := ""
	got, err = svc.Update(ctx, c.ID, &dto.UpdateConstituencyRequest{MLAID: &unassign})
	require.NoError(t, err)
	assert.Nil(t, got.MLAID)
}

func TestConstituencyDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c := f.addConstituency("North", nil)
	p := f.addPanchayat("Green", c.ID, "W1")
	svc := f.service(Options{})

	err := svc.Constituencies.Delete(ctx, c.ID)
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, svc.Panchayats.Delete(ctx, p.ID))
	require.NoError(t, svc.Constituencies.Delete(ctx, c.ID))

	_, err = svc.Constituencies.Get(ctx, c.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestConstituencyList(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		f.addConstituency(name, nil)
	}

	list, total, err := f.service(Options{}).Constituencies.List(context.Background(), repositories.ListOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Charlie", list[0].Name)
}
