package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends the {success:false,message} envelope the dashboard client reads.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondErrorWithDetails adds per-field validation details to the envelope.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"success": false, "message": message, "details": details})
}

// respondStoreError maps a repository or validation error to its HTTP status.
func respondStoreError(c *gin.Context, fallback string, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		respondErrorWithDetails(c, http.StatusBadRequest, verr.Error(), fieldDetails(verr), err)
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, "Already exists", err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldDetails(verr *apperrors.ValidationError) []fieldDetail {
	out := make([]fieldDetail, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, fieldDetail{Field: f.Field, Message: f.Reason})
	}
	return out
}

func respondOK(c *gin.Context, key string, value any) {
	c.JSON(http.StatusOK, gin.H{"success": true, key: value})
}
