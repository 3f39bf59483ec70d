package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateHierarchy(t *testing.T) {
	f := newFixture()
	north := f.addConstituency("North", nil)
	south := f.addConstituency("South", nil)
	green := f.addPanchayat("Green", north.ID, "W1", "W2")

	tests := []struct {
		name         string
		constituency primitive.ObjectID
		panchayat    primitive.ObjectID
		ward         string
		want         error
	}{
		{"valid", north.ID, green.ID, "W2", nil},
		{"unknown constituency", primitive.NewObjectID(), green.ID, "W1", ErrConstituencyNotFound},
		{"unknown panchayat", north.ID, primitive.NewObjectID(), "W1", ErrPanchayatNotFound},
		{"panchayat of another constituency", south.ID, green.ID, "W1", ErrPanchayatMismatch},
		{"unknown ward", north.ID, green.ID, "W9", ErrWardNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHierarchy(context.Background(), f.repo, tt.constituency, tt.panchayat, tt.ward)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			appErr := requireStatus(t, err, http.StatusBadRequest)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want.Error(), appErr.Message)
		})
	}
}

func TestNotFoundOr(t *testing.T) {
	err := notFoundOr(assert.AnError, "issue")
	appErr := requireStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, "Failed to load issue", appErr.Message)
}
