package service

import (
	"context"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// FavoriteService manages saved artworks.
type FavoriteService interface {
	List(ctx context.Context, actor Actor, page, limit int) ([]dto.ArtworkResponse, int64, error)
	Add(ctx context.Context, actor Actor, artworkID uint) error
	Remove(ctx context.Context, actor Actor, artworkID uint) error
}

type favoriteService struct {
	repo     repository.FavoriteRepository
	artworks repository.ArtworkRepository
}

// NewFavoriteService constructs the favorite service.
func NewFavoriteService(repo repository.FavoriteRepository, artworks repository.ArtworkRepository) FavoriteService {
	return &favoriteService{repo: repo, artworks: artworks}
}

func (s *favoriteService) List(ctx context.Context, actor Actor, page, limit int) ([]dto.ArtworkResponse, int64, error) {
	artworks, total, err := s.repo.List(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]dto.ArtworkResponse, 0, len(artworks))
	for _, artwork := range artworks {
		responses = append(responses, dto.NewArtworkResponse(artwork))
	}
	return responses, total, nil
}

func (s *favoriteService) Add(ctx context.Context, actor Actor, artworkID uint) error {
	if _, err := s.artworks.GetByID(ctx, artworkID); err != nil {
		return translateNotFound(err, ErrArtworkNotFound)
	}
	return s.repo.Add(ctx, actor.ID, artworkID)
}

func (s *favoriteService) Remove(ctx context.Context, actor Actor, artworkID uint) error {
	return s.repo.Remove(ctx, actor.ID, artworkID)
}
