package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
)

// UserHandler exposes user directory and approval operations.
type UserHandler struct {
	userSvc portssvc.UserSvcFacade
}

func NewUserHandler(userSvc portssvc.UserSvcFacade) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListPendingUsers godoc
// @Summary List users awaiting approval
// @Tags users
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.ListUsersResponse
// @Router /users/pending [get]
func (h *UserHandler) ListPendingUsers(c *gin.Context) {
	limit := 50
	var params struct {
		Limit int `form:"limit,default=50"`
	}
	if err := c.ShouldBindQuery(&params); err == nil && params.Limit > 0 {
		limit = params.Limit
	}

	users, err := h.userSvc.ListPendingUsers(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListUsersResponse(users))
}

// ApproveUser godoc
// @Summary Approve a pending user
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 204
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{userID}/approve [post]
func (h *UserHandler) ApproveUser(c *gin.Context) {
	approverID, _ := middleware.GetUserIDFromCtx(c.Request.Context())

	if err := h.userSvc.ApproveUser(c.Request.Context(), c.Param("userID"), approverID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DisableUser godoc
// @Summary Disable a user
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 204
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{userID}/disable [post]
func (h *UserHandler) DisableUser(c *gin.Context) {
	requesterID, _ := middleware.GetUserIDFromCtx(c.Request.Context())

	if err := h.userSvc.DisableUser(c.Request.Context(), c.Param("userID"), requesterID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser godoc
// @Summary Get a user by ID
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{userID} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID := c.Param("userID")
	if err := h.authorizeSelfOrStaff(c, targetID); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userSvc.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateUser godoc
// @Summary Update a user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param profile body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /users/{userID} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID := c.Param("userID")
	if err := h.authorizeSelfOrStaff(c, targetID); err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	requesterID, _ := middleware.GetUserIDFromCtx(c.Request.Context())
	user, err := h.userSvc.UpdateUser(c.Request.Context(), targetID, req, requesterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) authorizeSelfOrStaff(c *gin.Context, targetUserID string) error {
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		return apperrors.ErrForbidden
	}
	role, ok := middleware.GetRoleFromCtx(c.Request.Context())
	if !ok {
		return apperrors.ErrForbidden
	}
	if userID == targetUserID || role.CanManageUsers() {
		return nil
	}
	return apperrors.ErrForbidden
}
