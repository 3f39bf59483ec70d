package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
	"civictrack-be/repositories"
)

// ValidateHierarchy checks that panchayatID exists under constituencyID and
// that wardNo is one of its wards. It returns the first failing reason as an
// AppError wrapping ErrConstituencyNotFound, ErrPanchayatNotFound,
// ErrPanchayatMismatch or ErrWardNotFound.
func ValidateHierarchy(ctx context.Context, repo *repositories.Repository, constituencyID, panchayatID primitive.ObjectID, wardNo string) error {
	if _, err := repo.Constituencies.GetByID(ctx, constituencyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return reason(http.StatusBadRequest, ErrConstituencyNotFound)
		}
		return Internal("Failed to validate constituency", err)
	}

	panchayat, err := repo.Panchayats.GetByID(ctx, panchayatID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return reason(http.StatusBadRequest, ErrPanchayatNotFound)
		}
		return Internal("Failed to validate panchayat", err)
	}
	if panchayat.ConstituencyID != constituencyID {
		return reason(http.StatusBadRequest, ErrPanchayatMismatch)
	}

	if !panchayat.HasWard(wardNo) {
		return reason(http.StatusBadRequest, ErrWardNotFound)
	}
	return nil
}

// parseID converts a hex id from a request, naming the field on failure.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, BadRequest("Invalid " + what + " id")
	}
	return id, nil
}

// notFoundOr maps a missing document to a 404 and anything else to a 500.
// what names the document in lower case, e.g. "issue".
func notFoundOr(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound(strings.ToUpper(what[:1]) + what[1:] + " not found")
	}
	return Internal("Failed to load "+what, err)
}

// canActOn reports whether actor may modify a resource reported by ownerID.
func canActOn(actor Actor, ownerID primitive.ObjectID) bool {
	return actor.Owns(ownerID) || actor.Role == models.RoleAdmin
}
