package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

func TestReviewServiceRules(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	audit := &recordingAudit{}
	svc := NewReviewService(repository.NewReviewRepository(db), repository.NewArtworkRepository(db), audit, testValidator(), testLogger())

	artist := createUser(t, db, "artist@example.com", models.RoleArtist, models.ArtistStatusVerified)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser, models.ArtistStatusNone)
	other := createUser(t, db, "other@example.com", models.RoleUser, models.ArtistStatusNone)
	admin := createUser(t, db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	artwork := createArtwork(t, db, artist.ID, "Blue Harbour", 5000)

	_, err := svc.Create(ctx, Actor{ID: artist.ID, Role: artist.Role}, artwork.ID, dto.CreateReviewRequest{Rating: 5})
	require.ErrorIs(t, err, ErrSelfReview)

	_, err = svc.Create(ctx, Actor{ID: buyer.ID, Role: buyer.Role}, artwork.ID, dto.CreateReviewRequest{Rating: 6})
	require.Error(t, err)

	review, err := svc.Create(ctx, Actor{ID: buyer.ID, Role: buyer.Role}, artwork.ID, dto.CreateReviewRequest{
		Rating:  4,
		Comment: `Lovely light <script>alert("x")</script>`,
	})
	require.NoError(t, err)
	require.Equal(t, "Lovely light", review.Comment)

	_, err = svc.Create(ctx, Actor{ID: buyer.ID, Role: buyer.Role}, artwork.ID, dto.CreateReviewRequest{Rating: 2})
	require.ErrorIs(t, err, ErrDuplicateReview)

	reviews, total, err := svc.List(ctx, artwork.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, 4, reviews[0].Rating)

	require.ErrorIs(t, svc.Delete(ctx, Actor{ID: other.ID, Role: other.Role}, review.ID, nil), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, Actor{ID: admin.ID, Role: admin.Role}, review.ID, nil))
	require.Len(t, audit.Entries(), 1)
	require.Equal(t, models.TargetArtwork, audit.Entries()[0].TargetType)

	require.ErrorIs(t, svc.Delete(ctx, Actor{ID: buyer.ID, Role: buyer.Role}, review.ID, nil), ErrReviewNotFound)
}

func TestFavoriteServiceIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	svc := NewFavoriteService(repository.NewFavoriteRepository(db), repository.NewArtworkRepository(db))

	artist := createUser(t, db, "artist@example.com", models.RoleArtist, models.ArtistStatusVerified)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser, models.ArtistStatusNone)
	artwork := createArtwork(t, db, artist.ID, "Blue Harbour", 5000)
	actor := Actor{ID: buyer.ID, Role: buyer.Role}

	require.NoError(t, svc.Add(ctx, actor, artwork.ID))
	require.NoError(t, svc.Add(ctx, actor, artwork.ID))
	require.ErrorIs(t, svc.Add(ctx, actor, 9999), ErrArtworkNotFound)

	items, total, err := svc.List(ctx, actor, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Blue Harbour", items[0].Title)

	require.NoError(t, svc.Remove(ctx, actor, artwork.ID))
	_, total, err = svc.List(ctx, actor, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

type fakeConn struct {
	mu      sync.Mutex
	written []dto.MessageResponse
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, v.(dto.MessageResponse))
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Written() []dto.MessageResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dto.MessageResponse(nil), c.written...)
}

func serveFake(t *testing.T, hub *MessageHub, userID uint) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		hub.Serve(context.Background(), userID, conn)
		close(done)
	}()
	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})
	require.Eventually(t, func() bool { return hub.Connected(userID) == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestMessageServiceSendDeliversLive(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	hub := NewMessageHub("node-a", testLogger())
	events := &recordingPublisher{}
	svc := NewMessageService(repository.NewMessageRepository(db), repository.NewUserRepository(db), hub, events, testValidator(), testLogger())

	alice := createUser(t, db, "alice@example.com", models.RoleUser, models.ArtistStatusNone)
	bob := createUser(t, db, "bob@example.com", models.RoleArtist, models.ArtistStatusVerified)
	bobConn := serveFake(t, hub, bob.ID)

	_, err := svc.Send(ctx, Actor{ID: alice.ID}, dto.SendMessageRequest{RecipientID: alice.ID, Content: "hi me"})
	require.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.Send(ctx, Actor{ID: alice.ID}, dto.SendMessageRequest{RecipientID: bob.ID, Content: "<b></b>"})
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(ctx, Actor{ID: alice.ID}, dto.SendMessageRequest{RecipientID: 4242, Content: "hello"})
	require.ErrorIs(t, err, ErrUserNotFound)

	sent, err := svc.Send(ctx, Actor{ID: alice.ID}, dto.SendMessageRequest{RecipientID: bob.ID, Content: "Is the <i>harbour</i> still available?"})
	require.NoError(t, err)
	require.Equal(t, "Is the harbour still available?", sent.Content)

	require.Eventually(t, func() bool { return len(bobConn.Written()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, sent.ID, bobConn.Written()[0].ID)
	require.Equal(t, []string{SubjectMessageCreated}, events.subjects)

	conversations, err := svc.Conversations(ctx, Actor{ID: bob.ID})
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, alice.ID, conversations[0].Counterpart.ID)
	require.EqualValues(t, 1, conversations[0].Unread)

	_, err = svc.MarkRead(ctx, Actor{ID: alice.ID}, sent.ID)
	require.ErrorIs(t, err, ErrForbidden)

	read, err := svc.MarkRead(ctx, Actor{ID: bob.ID}, sent.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)

	thread, total, err := svc.Thread(ctx, Actor{ID: bob.ID}, alice.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, thread, 1)
}

func TestMessageHubIgnoresOwnEvents(t *testing.T) {
	hub := NewMessageHub("node-a", testLogger())
	conn := serveFake(t, hub, 7)

	message := dto.MessageResponse{ID: 1, SenderID: 3, RecipientID: 7, Content: "hello"}
	own, err := json.Marshal(DomainEvent{Subject: SubjectMessageCreated, Source: "node-a", Payload: message})
	require.NoError(t, err)
	remote, err := json.Marshal(DomainEvent{Subject: SubjectMessageCreated, Source: "node-b", Payload: message})
	require.NoError(t, err)

	hub.HandleEvent(own)
	hub.HandleEvent([]byte("not json"))
	hub.HandleEvent(remote)

	require.Eventually(t, func() bool { return len(conn.Written()) == 1 }, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return len(conn.Written()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestMessageHubUnregistersOnClose(t *testing.T) {
	hub := NewMessageHub("node-a", testLogger())
	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		hub.Serve(context.Background(), 11, conn)
		close(done)
	}()
	require.Eventually(t, func() bool { return hub.Connected(11) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	<-done
	require.Zero(t, hub.Connected(11))
	require.Zero(t, hub.Deliver(dto.MessageResponse{SenderID: 2, RecipientID: 11}))
}
