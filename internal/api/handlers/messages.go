package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merke/chattr/internal/api/middleware"
	"github.com/merke/chattr/internal/chat"
	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/wire"
)

type MessageHandler struct {
	db          *sql.DB
	queries     *models.Queries
	coordinator *chat.Coordinator
}

func NewMessageHandler(db *sql.DB, coordinator *chat.Coordinator) *MessageHandler {
	return &MessageHandler{
		db:          db,
		queries:     models.New(db),
		coordinator: coordinator,
	}
}

// GetMessages returns the live conversation with another user.
// GET /api/messages/:id
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	otherID := c.Param("id")

	views, err := h.coordinator.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": views})
}

type sendMessageRequest struct {
	Text    string `json:"text"`
	Image   string `json:"image"`
	ReplyTo string `json:"replyTo"`
}

// SendMessage persists and delivers a new message to the user in the path.
// POST /api/messages/send/:id
func (h *MessageHandler) SendMessage(c *gin.Context) {
	senderID, _ := middleware.GetUserID(c)
	receiverID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if req.Text == "" && req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "message must have text or an image"})
		return
	}

	var imageData []byte
	if req.Image != "" {
		data, err := decodeInlineImage(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid image payload"})
			return
		}
		imageData = data
	}

	view, err := h.coordinator.Send(c.Request.Context(), senderID, receiverID, chat.SendInput{
		Text:      req.Text,
		ImageData: imageData,
		ReplyTo:   req.ReplyTo,
	})
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "newMessage": view})
}

// DeleteMessage soft-deletes a message owned by the requester.
// DELETE /api/messages/:messageId
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	messageID := c.Param("messageId")

	if err := h.coordinator.Delete(c.Request.Context(), userID, messageID); err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted"})
}

// MarkSeen flips a single message to seen.
// PUT /api/messages/mark/:id
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	messageID := c.Param("id")

	if err := h.coordinator.MarkSeen(c.Request.Context(), messageID); err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SidebarUsers returns the requester's contacts annotated with block state,
// plus the sparse unseen-count map.
// GET /api/messages/users
func (h *MessageHandler) SidebarUsers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	contacts, err := h.queries.ListContacts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list contacts"})
		return
	}

	blockedIDs, err := h.queries.ListBlockedIDs(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list blocked users"})
		return
	}
	blocked := make(map[string]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}

	views := make([]wire.ContactView, 0, len(contacts))
	for _, u := range contacts {
		views = append(views, wire.ContactView{
			UserView: wire.NewUserView(u),
			Blocked:  blocked[u.ID],
		})
	}

	counts, err := h.coordinator.UnseenCounts(c.Request.Context(), userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"users":          views,
		"unseenMessages": counts,
	})
}

// UnseenCounts returns the sparse contact→unseen-count map.
// GET /api/messages/unseen
func (h *MessageHandler) UnseenCounts(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	counts, err := h.coordinator.UnseenCounts(c.Request.Context(), userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unseenMessages": counts})
}

// respondChatError maps coordinator errors onto HTTP statuses.
func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, chat.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}
