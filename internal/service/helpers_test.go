package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/pkg/cloudinary"
	"github.com/noah-isme/nemesis-api/pkg/mailer"
	"github.com/noah-isme/nemesis-api/pkg/payments"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Artwork{},
		&models.Event{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Favorite{},
		&models.Message{},
		&models.AdminActivity{},
		&models.PlatformSettings{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role, artistStatus string) models.User {
	t.Helper()
	user := models.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role, ArtistStatus: artistStatus}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createArtwork(t *testing.T, db *gorm.DB, artistID uint, title string, price int64) models.Artwork {
	t.Helper()
	artwork := models.Artwork{
		ArtistID: artistID,
		Title:    title,
		Category: "painting",
		Kind:     models.ArtworkKindPhysical,
		Price:    price,
		Currency: "eur",
		Status:   models.ArtworkStatusAvailable,
	}
	require.NoError(t, db.Create(&artwork).Error)
	return artwork
}

func createEvent(t *testing.T, db *gorm.DB, organizerID uint, capacity, sold int) models.Event {
	t.Helper()
	event := models.Event{
		OrganizerID: organizerID,
		Title:       "Opening Night",
		Venue:       "Gallery 1",
		StartsAt:    time.Now().Add(48 * time.Hour).UTC(),
		Price:       1500,
		Currency:    "eur",
		Capacity:    capacity,
		TicketsSold: sold,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

// recordingAudit captures entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AdminActivityEntry
}

func (r *recordingAudit) Log(_ context.Context, entry AdminActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) Wait() {}

func (r *recordingAudit) Entries() []AdminActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AdminActivityEntry(nil), r.entries...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type storageStub struct {
	mu        sync.Mutex
	uploaded  bytes.Buffer
	destroyed []string
	failOn    map[string]bool
}

func (s *storageStub) Upload(_ context.Context, scope, name string, reader io.Reader) (cloudinary.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded.Reset()
	size, err := s.uploaded.ReadFrom(reader)
	if err != nil {
		return cloudinary.Asset{}, err
	}
	publicID := "nemesis/" + scope + "/" + cloudinary.PublicID(name)
	return cloudinary.Asset{
		URL:          "https://res.cloudinary.com/demo/" + publicID,
		PublicID:     publicID,
		ResourceType: "image",
		Bytes:        int(size),
	}, nil
}

func (s *storageStub) Destroy(_ context.Context, publicID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[publicID] {
		return errors.New("destroy failed")
	}
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func (s *storageStub) Destroyed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.destroyed...)
}

type gatewayStub struct {
	requests []payments.CheckoutRequest
	event    payments.WebhookEvent
	err      error
}

func (g *gatewayStub) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	if g.err != nil {
		return payments.CheckoutSession{}, g.err
	}
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	return payments.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/pay/" + id}, nil
}

func (g *gatewayStub) ParseWebhook(payload []byte, signature string) (payments.WebhookEvent, error) {
	if signature != "valid" {
		return payments.WebhookEvent{}, payments.ErrInvalidSignature
	}
	return g.event, nil
}

type staticSettings struct {
	settings PlatformSettings
}

func (s staticSettings) Current(context.Context) PlatformSettings {
	return s.settings
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
