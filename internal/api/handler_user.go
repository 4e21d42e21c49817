package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davydenkov/user-manage/internal/store"
	"github.com/davydenkov/user-manage/pkg/logging"
	"github.com/davydenkov/user-manage/pkg/models"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// EventPublisher is the publishing side of the event path as seen by the
// handlers.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, eventType models.EventType, data models.EventData) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	Store     *store.UserStore
	Publisher EventPublisher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s *store.UserStore, pub EventPublisher) *UserHandler {
	return &UserHandler{Store: s, Publisher: pub}
}

// ListUsers godoc
// @Summary      List users
// @Description  Returns a paginated list of users ordered by ID
// @Tags         users
// @Produce      json
// @Param        page      query     int  false  "Page number (1-based)"        default(1)
// @Param        per_page  query     int  false  "Items per page (max 100)"     default(10)
// @Success      200       {object}  models.UserListResponse
// @Failure      400       {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer >= 1"})
		return
	}
	perPage, err := queryInt(c, "per_page", defaultPerPage)
	if err != nil || perPage < 1 || perPage > maxPerPage {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("per_page must be an integer between 1 and %d", maxPerPage)})
		return
	}

	users, total, err := h.Store.List(c.Request.Context(), page, perPage)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{
		Users:   users,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// GetUser godoc
// @Summary      Get a user by ID
// @Description  Returns a single user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.Store.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", id)})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error().Err(err).Msg("failed to fetch user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary      Create a new user
// @Description  Creates a user and publishes a user.created event
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateUserRequest  true  "Create user request"
// @Success      201      {object}  models.User
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if blank(req.Name) || blank(req.Surname) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and surname must not be blank"})
		return
	}

	user, err := h.Store.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Surname), req.Password)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	h.publishEvent(ctx, models.EventUserCreated, user.ID)

	logging.FromContext(ctx).Info().Int64("user_id", user.ID).Msg("user created")
	c.JSON(http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary      Update an existing user
// @Description  Applies a partial update and publishes a user.updated event
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "User ID"
// @Param        request  body      models.UpdateUserRequest  true  "Update user request"
// @Success      200      {object}  models.User
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.Name != nil && blank(*req.Name)) || (req.Surname != nil && blank(*req.Surname)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and surname must not be blank"})
		return
	}

	user, err := h.Store.Update(ctx, id, req)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", id)})
		return
	}
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("failed to update user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	h.publishEvent(ctx, models.EventUserUpdated, user.ID)

	logging.FromContext(ctx).Info().Int64("user_id", user.ID).Msg("user updated")
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Removes a user permanently and publishes a user.deleted event
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.Store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d not found", id)})
		return
	}
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	h.publishEvent(ctx, models.EventUserDeleted, id)

	logging.FromContext(ctx).Info().Int64("user_id", id).Msg("user deleted")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User with id %d deleted", id)})
}

// publishEvent fires a lifecycle event. Publish failures are logged and
// swallowed: the mutation already committed and the HTTP response must not
// depend on broker health.
func (h *UserHandler) publishEvent(ctx context.Context, eventType models.EventType, userID int64) {
	if err := h.Publisher.PublishUserEvent(ctx, eventType, models.EventData{UserID: userID}); err != nil {
		logging.FromContext(ctx).Error().Err(err).
			Str("event_type", string(eventType)).
			Int64("user_id", userID).
			Msg("failed to publish event")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
