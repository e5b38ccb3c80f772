package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Morfeas98/GameCollectionApp/internal/activity"
	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/auth"
	"github.com/Morfeas98/GameCollectionApp/internal/catalog"
	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/membership"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/gin-gonic/gin"
)

// UserStore is the account persistence used by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	UserStore
	catalog.Store
	membership.Store
	activity.Store
}

// Handler serves the REST API.
type Handler struct {
	users       UserStore
	planner     *catalog.Planner
	recommender *catalog.Recommender
	catalog     *catalog.Manager
	memberships *membership.Service
	activity    *activity.Aggregator
	jwtSecret   string
}

// New wires the services on top of s.
func New(s Store, jwtSecret string) *Handler {
	return &Handler{
		users:       s,
		planner:     catalog.NewPlanner(s),
		recommender: catalog.NewRecommender(s),
		catalog:     catalog.NewManager(s),
		memberships: membership.NewService(s),
		activity:    activity.NewAggregator(s),
		jwtSecret:   jwtSecret,
	}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error  string              `json:"error" example:"An error message"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// respondError maps an engine error onto an HTTP status.
func respondError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this collection"})
	case errors.Is(err, apperr.ErrDuplicateMembership):
		c.JSON(http.StatusConflict, gin.H{"error": "Game is already in this collection"})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		c.Status(499)
	default:
		_ = c.Error(err)
		logging.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// identity builds the membership capability for the authenticated caller.
func identity(c *gin.Context) (membership.Identity, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return membership.Identity{}, false
	}
	return membership.Identity{UserID: id, Role: auth.Role(c)}, true
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// queryUint returns nil for absent or malformed values.
func queryUint(c *gin.Context, key string) *uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

// queryInt returns nil for absent or malformed values.
func queryInt(c *gin.Context, key string) *int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
