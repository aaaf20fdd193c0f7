package chat

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/wire"
)

type fakeStore struct {
	mu       sync.Mutex
	messages map[string]models.Message
	order    []string
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string]models.Message)}
}

func (s *fakeStore) CreateMessage(_ context.Context, arg models.CreateMessageParams) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return models.Message{}, err
	}
	m := models.Message{
		ID:         arg.ID,
		SenderID:   arg.SenderID,
		ReceiverID: arg.ReceiverID,
		Text:       arg.Text,
		Image:      arg.Image,
		ReplyTo:    arg.ReplyTo,
	}
	s.messages[m.ID] = m
	s.order = append(s.order, m.ID)
	return m, nil
}

func (s *fakeStore) GetMessageByID(_ context.Context, id string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return models.Message{}, sql.ErrNoRows
	}
	return m, nil
}

func (s *fakeStore) ListConversation(_ context.Context, arg models.ListConversationParams) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, id := range s.order {
		m := s.messages[id]
		if m.Deleted {
			continue
		}
		if (m.SenderID == arg.UserA && m.ReceiverID == arg.UserB) ||
			(m.SenderID == arg.UserB && m.ReceiverID == arg.UserA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkMessageSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.messages[id]
	m.Seen = true
	s.messages[id] = m
	return nil
}

func (s *fakeStore) SoftDeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.messages[id]
	m.Deleted = true
	s.messages[id] = m
	return nil
}

func (s *fakeStore) CountUnseenFrom(_ context.Context, arg models.CountUnseenFromParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.SenderID == arg.SenderID && m.ReceiverID == arg.ReceiverID && !m.Seen && !m.Deleted {
			n++
		}
	}
	return n, nil
}

type fakeDirectory struct {
	users    map[string]models.User
	contacts map[string][]string
	blocked  map[string]map[string]bool
}

func newFakeDirectory(userIDs ...string) *fakeDirectory {
	d := &fakeDirectory{
		users:    make(map[string]models.User),
		contacts: make(map[string][]string),
		blocked:  make(map[string]map[string]bool),
	}
	for _, id := range userIDs {
		d.users[id] = models.User{ID: id, Email: id + "@test", FullName: "User " + id}
	}
	return d
}

func (d *fakeDirectory) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (d *fakeDirectory) ListContactIDs(_ context.Context, userID string) ([]string, error) {
	return d.contacts[userID], nil
}

func (d *fakeDirectory) IsBlocked(_ context.Context, arg models.BlockParams) (bool, error) {
	return d.blocked[arg.UserID][arg.BlockedID], nil
}

func (d *fakeDirectory) block(userID, blockedID string) {
	if d.blocked[userID] == nil {
		d.blocked[userID] = make(map[string]bool)
	}
	d.blocked[userID][blockedID] = true
}

type fakeUploader struct {
	fail bool
	refs int
}

func (u *fakeUploader) Upload(data []byte) (string, error) {
	if u.fail {
		return "", fmt.Errorf("upload rejected")
	}
	u.refs++
	return fmt.Sprintf("/uploads/ref-%d", u.refs), nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	delivered map[string][]wire.Event
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: make(map[string][]wire.Event)}
}

func (n *fakeNotifier) DeliverTo(userID string, event wire.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered[userID] = append(n.delivered[userID], event)
}

func (n *fakeNotifier) eventsFor(userID string) []wire.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered[userID]
}

func newTestCoordinator() (*Coordinator, *fakeStore, *fakeDirectory, *fakeUploader, *fakeNotifier) {
	store := newFakeStore()
	directory := newFakeDirectory("alice", "bob", "carol")
	uploader := &fakeUploader{}
	notifier := newFakeNotifier()
	var seq int
	newID := func() string {
		seq++
		return fmt.Sprintf("m%d", seq)
	}
	return NewCoordinator(store, directory, uploader, notifier, newID), store, directory, uploader, notifier
}

func TestSend_TextMessageDeliversToBothParties(t *testing.T) {
	c, store, _, _, notifier := newTestCoordinator()

	view, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, "alice", view.Sender.ID)
	require.Equal(t, "bob", view.Receiver.ID)
	require.NotNil(t, view.Text)
	require.Equal(t, "hi", *view.Text)
	require.False(t, view.Seen)

	// Persisted before delivery.
	stored, err := store.GetMessageByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.False(t, stored.Deleted)

	bobEvents := notifier.eventsFor("bob")
	require.Len(t, bobEvents, 1)
	ev, ok := bobEvents[0].(wire.NewMessageEvent)
	require.True(t, ok)
	require.Equal(t, "alice", ev.SenderID)
	require.Equal(t, "hi", *ev.Message.Text)
	require.False(t, ev.Message.Seen)

	// The sender's own session gets the same event.
	require.Len(t, notifier.eventsFor("alice"), 1)
}

func TestSend_BlockedSenderIsForbiddenAndNothingPersists(t *testing.T) {
	c, store, directory, _, notifier := newTestCoordinator()
	directory.block("bob", "alice")

	_, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "hi"})
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, store.order)
	require.Empty(t, notifier.eventsFor("bob"))
}

func TestSend_UploadFailureAbortsBeforePersisting(t *testing.T) {
	c, store, _, uploader, _ := newTestCoordinator()
	uploader.fail = true

	_, err := c.Send(context.Background(), "alice", "bob", SendInput{
		Text:      "pic",
		ImageData: []byte{0x89, 0x50},
	})
	require.ErrorIs(t, err, ErrUpstream)
	require.Empty(t, store.order)
}

func TestSend_ImageUploadedBeforePersist(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()

	view, err := c.Send(context.Background(), "alice", "bob", SendInput{
		ImageData: []byte{0x89, 0x50},
	})
	require.NoError(t, err)
	require.NotNil(t, view.Image)
	require.Equal(t, "/uploads/ref-1", *view.Image)
}

func TestSend_ReplyToMissingMessageIsNotFound(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()

	_, err := c.Send(context.Background(), "alice", "bob", SendInput{
		Text:    "re",
		ReplyTo: "missing",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSend_ReplyToDeletedMessageIsNotFound(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()

	orig, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "first"})
	require.NoError(t, err)
	require.NoError(t, c.Delete(context.Background(), "alice", orig.ID))

	_, err = c.Send(context.Background(), "bob", "alice", SendInput{
		Text:    "re",
		ReplyTo: orig.ID,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSend_ReplyExcerptResolved(t *testing.T) {
	c, _, _, _, notifier := newTestCoordinator()

	orig, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "first"})
	require.NoError(t, err)

	view, err := c.Send(context.Background(), "bob", "alice", SendInput{
		Text:    "re",
		ReplyTo: orig.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, view.ReplyTo)
	require.Equal(t, orig.ID, view.ReplyTo.ID)
	require.Equal(t, "first", *view.ReplyTo.Text)
	require.Equal(t, "alice", view.ReplyTo.SenderID)

	// Four deliveries total: two per send.
	require.Len(t, notifier.eventsFor("alice"), 2)
	require.Len(t, notifier.eventsFor("bob"), 2)
}

func TestSend_UnknownReceiverIsNotFound(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()

	_, err := c.Send(context.Background(), "alice", "ghost", SendInput{Text: "hi"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_NonSenderIsUnauthorized(t *testing.T) {
	c, store, _, _, _ := newTestCoordinator()

	view, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "hi"})
	require.NoError(t, err)

	err = c.Delete(context.Background(), "bob", view.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	stored, err := store.GetMessageByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.False(t, stored.Deleted)
}

func TestDelete_NotifiesReceiverOnce(t *testing.T) {
	c, store, _, _, notifier := newTestCoordinator()

	view, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "alice", view.ID))

	stored, err := store.GetMessageByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, stored.Deleted)

	bobEvents := notifier.eventsFor("bob")
	require.Len(t, bobEvents, 2) // newMessage + messageDeleted
	del, ok := bobEvents[1].(wire.MessageDeletedEvent)
	require.True(t, ok)
	require.Equal(t, view.ID, del.MessageID)

	// Repeat delete: no-op success, no second event, flag stays set.
	require.NoError(t, c.Delete(context.Background(), "alice", view.ID))
	require.Len(t, notifier.eventsFor("bob"), 2)
	stored, err = store.GetMessageByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, stored.Deleted)
}

func TestDelete_MissingMessageIsNotFound(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()
	require.ErrorIs(t, c.Delete(context.Background(), "alice", "missing"), ErrNotFound)
}

func TestMarkSeen_Idempotent(t *testing.T) {
	c, store, _, _, notifier := newTestCoordinator()

	view, err := c.Send(context.Background(), "alice", "bob", SendInput{Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, c.MarkSeen(context.Background(), view.ID))
	require.NoError(t, c.MarkSeen(context.Background(), view.ID))

	stored, err := store.GetMessageByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, stored.Seen)

	// Seen transitions emit no delivery event.
	require.Len(t, notifier.eventsFor("alice"), 1)
	require.Len(t, notifier.eventsFor("bob"), 1)
}

func TestUnseenCounts_SparseAndConsistent(t *testing.T) {
	c, _, directory, _, _ := newTestCoordinator()
	directory.contacts["bob"] = []string{"alice", "carol"}

	ctx := context.Background()
	m1, err := c.Send(ctx, "alice", "bob", SendInput{Text: "one"})
	require.NoError(t, err)
	_, err = c.Send(ctx, "alice", "bob", SendInput{Text: "two"})
	require.NoError(t, err)
	m3, err := c.Send(ctx, "alice", "bob", SendInput{Text: "three"})
	require.NoError(t, err)

	counts, err := c.UnseenCounts(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"alice": 3}, counts)

	// Seen and deleted messages drop out of the count.
	require.NoError(t, c.MarkSeen(ctx, m1.ID))
	require.NoError(t, c.Delete(ctx, "alice", m3.ID))

	counts, err = c.UnseenCounts(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"alice": 1}, counts)

	// Carol has sent nothing: omitted, not zero.
	require.NotContains(t, counts, "carol")
}

func TestConversation_ExcludesDeleted(t *testing.T) {
	c, _, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	m1, err := c.Send(ctx, "alice", "bob", SendInput{Text: "one"})
	require.NoError(t, err)
	m2, err := c.Send(ctx, "bob", "alice", SendInput{Text: "two"})
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "alice", m1.ID))

	views, err := c.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, m2.ID, views[0].ID)
}

func TestSend_OfflineReceiverStillPersists(t *testing.T) {
	// The notifier here accepts everything; what matters is that the message
	// round-trips through the store regardless of delivery.
	c, _, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	view, err := c.Send(ctx, "alice", "bob", SendInput{Text: "hi"})
	require.NoError(t, err)

	views, err := c.Conversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, view.ID, views[0].ID)
}
