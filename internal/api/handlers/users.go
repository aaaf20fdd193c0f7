package handlers

import (
	"database/sql"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/merke/chattr/internal/api/middleware"
	"github.com/merke/chattr/internal/chat"
	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/wire"
)

type UserHandler struct {
	db       *sql.DB
	queries  *models.Queries
	uploader chat.Uploader
}

func NewUserHandler(db *sql.DB, uploader chat.Uploader) *UserHandler {
	return &UserHandler{
		db:       db,
		queries:  models.New(db),
		uploader: uploader,
	}
}

type updateProfileRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

// UpdateProfile updates name, bio and optionally the profile image. The image
// arrives as an inline base64 payload and is uploaded before the row changes.
// PUT /api/users/update-profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var picRef *string
	if req.ProfilePic != "" {
		data, err := decodeInlineImage(req.ProfilePic)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid image payload"})
			return
		}
		ref, err := h.uploader.Upload(data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "image upload failed"})
			return
		}
		picRef = &ref
	}

	user, err := h.queries.UpdateUserProfile(c.Request.Context(), models.UpdateUserProfileParams{
		FullName:   req.FullName,
		Bio:        req.Bio,
		ProfilePic: picRef,
		ID:         userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": wire.NewUserView(user)})
}

// Search finds users by name or email fragment, excluding the requester.
// GET /api/users/search?query=...
func (h *UserHandler) Search(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "users": []wire.UserView{}})
		return
	}

	users, err := h.queries.SearchUsers(c.Request.Context(), models.SearchUsersParams{
		Query:     query,
		ExcludeID: userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "search failed"})
		return
	}

	views := make([]wire.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, wire.NewUserView(u))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": views})
}

type contactRequest struct {
	ContactID string `json:"contactId" binding:"required"`
}

// AddContact adds another user to the requester's contact list.
// POST /api/users/add-contact
func (h *UserHandler) AddContact(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.ContactID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cannot add yourself as a contact"})
		return
	}

	if _, err := h.queries.GetUserByID(c.Request.Context(), req.ContactID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	if err := h.queries.AddContact(c.Request.Context(), models.ContactParams{
		UserID:    userID,
		ContactID: req.ContactID,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to add contact"})
		return
	}

	h.respondContacts(c, userID)
}

// RemoveContact removes a user from the requester's contact list.
// POST /api/users/remove-contact
func (h *UserHandler) RemoveContact(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.queries.RemoveContact(c.Request.Context(), models.ContactParams{
		UserID:    userID,
		ContactID: req.ContactID,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to remove contact"})
		return
	}

	h.respondContacts(c, userID)
}

type blockRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Block adds a user to the requester's block list.
// POST /api/users/block-user
func (h *UserHandler) Block(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cannot block yourself"})
		return
	}

	if _, err := h.queries.GetUserByID(c.Request.Context(), req.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	if err := h.queries.BlockUser(c.Request.Context(), models.BlockParams{
		UserID:    userID,
		BlockedID: req.UserID,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to block user"})
		return
	}

	h.respondContactsAndBlocked(c, userID)
}

// Unblock removes a user from the requester's block list.
// POST /api/users/unblock-user
func (h *UserHandler) Unblock(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.queries.UnblockUser(c.Request.Context(), models.BlockParams{
		UserID:    userID,
		BlockedID: req.UserID,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to unblock user"})
		return
	}

	h.respondContactsAndBlocked(c, userID)
}

func (h *UserHandler) respondContacts(c *gin.Context, userID string) {
	contacts, err := h.queries.ListContacts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list contacts"})
		return
	}
	views := make([]wire.UserView, 0, len(contacts))
	for _, u := range contacts {
		views = append(views, wire.NewUserView(u))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contacts": views})
}

func (h *UserHandler) respondContactsAndBlocked(c *gin.Context, userID string) {
	contacts, err := h.queries.ListContacts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list contacts"})
		return
	}
	blocked, err := h.queries.ListBlockedUsers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list blocked users"})
		return
	}

	contactViews := make([]wire.UserView, 0, len(contacts))
	for _, u := range contacts {
		contactViews = append(contactViews, wire.NewUserView(u))
	}
	blockedViews := make([]wire.UserView, 0, len(blocked))
	for _, u := range blocked {
		blockedViews = append(blockedViews, wire.NewUserView(u))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"contacts":     contactViews,
		"blockedUsers": blockedViews,
	})
}

// decodeInlineImage accepts either a raw base64 string or a data URL
// ("data:image/png;base64,....") and returns the decoded bytes.
func decodeInlineImage(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}
