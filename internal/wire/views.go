package wire

import (
	"github.com/merke/chattr/internal/models"
)

// UserView is the client-facing shape of a user account. Password hashes
// never leave the server.
type UserView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}

// ContactView is a UserView annotated with the viewer's block state.
type ContactView struct {
	UserView
	Blocked bool `json:"blocked"`
}

// ReplyView is the excerpt of a replied-to message embedded in a MessageView.
type ReplyView struct {
	ID       string  `json:"id"`
	SenderID string  `json:"senderId"`
	Text     *string `json:"text"`
	Image    *string `json:"image"`
}

// MessageView is the fully-resolved, client-facing shape of a message.
type MessageView struct {
	ID        string     `json:"id"`
	Sender    UserView   `json:"sender"`
	Receiver  UserView   `json:"receiver"`
	Text      *string    `json:"text"`
	Image     *string    `json:"image"`
	ReplyTo   *ReplyView `json:"replyTo"`
	Seen      bool       `json:"seen"`
	CreatedAt int64      `json:"createdAt"`
}

// NewUserView converts a stored user to its client-facing shape.
func NewUserView(u models.User) UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
	}
}

// NewReplyView converts a stored message to a reply excerpt.
func NewReplyView(m models.Message) *ReplyView {
	v := &ReplyView{
		ID:       m.ID,
		SenderID: m.SenderID,
	}
	if m.Text.Valid {
		text := m.Text.String
		v.Text = &text
	}
	if m.Image.Valid {
		image := m.Image.String
		v.Image = &image
	}
	return v
}

// NewMessageView converts a stored message plus its resolved participants and
// optional reply excerpt to the client-facing shape.
func NewMessageView(m models.Message, sender, receiver models.User, replyTo *ReplyView) MessageView {
	v := MessageView{
		ID:        m.ID,
		Sender:    NewUserView(sender),
		Receiver:  NewUserView(receiver),
		ReplyTo:   replyTo,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
	if m.Text.Valid {
		text := m.Text.String
		v.Text = &text
	}
	if m.Image.Valid {
		image := m.Image.String
		v.Image = &image
	}
	return v
}
