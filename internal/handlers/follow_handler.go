package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sajidulbari/loopin/backend/internal/relationship"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	service *relationship.Service
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(service *relationship.Service) *FollowHandler {
	return &FollowHandler{service: service}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user. With ?mode=async the action is queued for the
// batch consumer instead of written synchronously.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	if c.QueryParam("mode") == "async" {
		if err := h.service.EnqueueFollow(ctx, currentUserID, targetID); err != nil {
			if errors.Is(err, relationship.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "User not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusAccepted, echo.Map{"success": true, "data": echo.Map{"queued": true}})
	}

	if err := h.service.Follow(ctx, currentUserID, targetID); err != nil {
		switch {
		case errors.Is(err, relationship.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, relationship.ErrAlreadyFollowing):
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user. With ?mode=async the action is queued.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	if c.QueryParam("mode") == "async" {
		if err := h.service.EnqueueUnfollow(ctx, currentUserID, targetID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusAccepted, echo.Map{"success": true, "data": echo.Map{"queued": true}})
	}

	if err := h.service.Unfollow(ctx, currentUserID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// getUserIDFromContext reads the authenticated user id set by the JWT middleware
func getUserIDFromContext(c echo.Context) int64 {
	if id, ok := c.Get("user_id").(int64); ok {
		return id
	}
	return 0
}
