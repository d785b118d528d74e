package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

func newCartFixture(t *testing.T) (*gorm.DB, CartService) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewArtworkRepository(db),
		repository.NewEventRepository(db),
		"eur",
		testValidator(),
		testLogger(),
	)
	return db, svc
}

func TestCartServiceArtworkRules(t *testing.T) {
	db, svc := newCartFixture(t)
	ctx := context.Background()

	artist := createUser(t, db, "artist@example.com", models.RoleArtist, models.ArtistStatusVerified)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser, models.ArtistStatusNone)
	artwork := createArtwork(t, db, artist.ID, "Blue Harbour", 5000)
	sold := createArtwork(t, db, artist.ID, "Red Field", 9000)
	require.NoError(t, db.Model(&sold).Update("status", models.ArtworkStatusSold).Error)

	_, err := svc.Add(ctx, artist.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: artwork.ID})
	require.ErrorIs(t, err, ErrOwnItem)

	_, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: sold.ID})
	require.ErrorIs(t, err, ErrCartItemUnavailable)

	cart, err := svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: artwork.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 1, cart.Items[0].Quantity)
	require.EqualValues(t, 5000, cart.Total)

	cart, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: artwork.ID})
	require.NoError(t, err)
	require.Equal(t, 1, cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, buyer.ID, cart.Items[0].ID, dto.UpdateCartItemRequest{Quantity: 2})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: 9999})
	require.ErrorIs(t, err, ErrArtworkNotFound)
}

func TestCartServiceEventCapacity(t *testing.T) {
	db, svc := newCartFixture(t)
	ctx := context.Background()

	organizer := createUser(t, db, "gallery@example.com", models.RoleGallerist, models.ArtistStatusVerified)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser, models.ArtistStatusNone)
	event := createEvent(t, db, organizer.ID, 10, 7)

	cart, err := svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeEvent, ItemID: event.ID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2, cart.Count)
	require.EqualValues(t, 3000, cart.Total)

	_, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeEvent, ItemID: event.ID, Quantity: 2})
	require.ErrorIs(t, err, ErrInsufficientCapacity)

	cart, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeEvent, ItemID: event.ID, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 3, cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, buyer.ID, cart.Items[0].ID, dto.UpdateCartItemRequest{Quantity: 4})
	require.ErrorIs(t, err, ErrInsufficientCapacity)

	_, err = svc.Add(ctx, organizer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeEvent, ItemID: event.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrOwnItem)
}

func TestCartServiceUnavailableLinesExcludedFromTotal(t *testing.T) {
	db, svc := newCartFixture(t)
	ctx := context.Background()

	artist := createUser(t, db, "artist@example.com", models.RoleArtist, models.ArtistStatusVerified)
	buyer := createUser(t, db, "buyer@example.com", models.RoleUser, models.ArtistStatusNone)
	first := createArtwork(t, db, artist.ID, "First", 1000)
	second := createArtwork(t, db, artist.ID, "Second", 2000)

	_, err := svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: first.ID})
	require.NoError(t, err)
	_, err = svc.Add(ctx, buyer.ID, dto.AddCartItemRequest{ItemType: models.ItemTypeArtwork, ItemID: second.ID})
	require.NoError(t, err)

	require.NoError(t, db.Model(&second).Update("status", models.ArtworkStatusSold).Error)

	cart, err := svc.Get(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	require.EqualValues(t, 1000, cart.Total)

	require.NoError(t, svc.Clear(ctx, buyer.ID))
	cart, err = svc.Get(ctx, buyer.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}
