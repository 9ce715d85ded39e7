package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/backend"
	"github.com/jumak-kr/jumakweb/pkg/models"
)

// ErrValidation wraps all input rejections so the API layer can map them to
// 400 without inspecting messages.
var ErrValidation = errors.New("validation failed")

// Cache TTLs. Top searches churn fast; weather barely moves inside ten
// minutes and the upstream call fans out to a forecast provider.
const (
	topSearchesTTL = 60 * time.Second
	weatherTTL     = 10 * time.Minute
	cocktailsTTL   = 5 * time.Minute
)

type NoteStore interface {
	Create(n *models.TastingNote) (*models.TastingNote, error)
	ByUser(userID string) ([]*models.TastingNote, error)
	ByLiquor(liquorID int) ([]*models.TastingNote, error)
	Public(limit int) ([]*models.TastingNote, error)
	Update(id, userID string, n *models.TastingNote) (*models.TastingNote, error)
	Delete(id, userID string) error
}

type Service struct {
	repo NoteStore
	rdb  *redis.Client
	api  *backend.Client
	log  zerolog.Logger
}

// NewService wires the note store, the optional redis cache and the liquor
// backend client. rdb may be nil; every cached read then falls through.
func NewService(repo NoteStore, rdb *redis.Client, api *backend.Client, log zerolog.Logger) *Service {
	return &Service{repo: repo, rdb: rdb, api: api, log: log}
}

// CreateNote validates and stores a tasting note for the given user.
func (s *Service) CreateNote(ctx context.Context, userID string, n *models.TastingNote) (*models.TastingNote, error) {
	if err := validateNote(n); err != nil {
		return nil, err
	}
	n.UserID = userID
	return s.repo.Create(n)
}

func (s *Service) NotesByUser(ctx context.Context, userID string) ([]*models.TastingNote, error) {
	return s.repo.ByUser(userID)
}

func (s *Service) NotesByLiquor(ctx context.Context, liquorID int) ([]*models.TastingNote, error) {
	return s.repo.ByLiquor(liquorID)
}

func (s *Service) PublicNotes(ctx context.Context, limit int) ([]*models.TastingNote, error) {
	return s.repo.Public(limit)
}

func (s *Service) UpdateNote(ctx context.Context, id, userID string, n *models.TastingNote) (*models.TastingNote, error) {
	if err := validateNote(n); err != nil {
		return nil, err
	}
	return s.repo.Update(id, userID, n)
}

func (s *Service) DeleteNote(ctx context.Context, id, userID string) error {
	return s.repo.Delete(id, userID)
}

func validateNote(n *models.TastingNote) error {
	if n.LiquorID <= 0 {
		return fmt.Errorf("%w: liquor_id is required", ErrValidation)
	}
	if n.Rating < 1 || n.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if !n.FlavorProfile.InRange() {
		return fmt.Errorf("%w: flavor ratings must be between 1 and 5", ErrValidation)
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

// TopSearches returns the search-rank board, served from redis when warm.
func (s *Service) TopSearches(ctx context.Context, limit int) ([]backend.SearchRank, error) {
	key := fmt.Sprintf("jumak:top_searches:%d", limit)
	var ranks []backend.SearchRank
	if s.cacheGet(ctx, key, &ranks) {
		return ranks, nil
	}
	ranks, err := s.api.TopSearches(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, ranks, topSearchesTTL)
	return ranks, nil
}

// WeatherRecommend proxies the weather-based recommendation with a cache
// keyed on the administrative code and optional city.
func (s *Service) WeatherRecommend(ctx context.Context, admCd, city string) (*backend.WeatherRecommendation, error) {
	key := fmt.Sprintf("jumak:weather:%s:%s", admCd, city)
	var rec backend.WeatherRecommendation
	if s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	out, err := s.api.WeatherRecommend(ctx, admCd, city)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, out, weatherTTL)
	return out, nil
}

// RandomCocktails feeds the landing-page carousel.
func (s *Service) RandomCocktails(ctx context.Context, limit int) ([]backend.RandomCocktail, error) {
	key := fmt.Sprintf("jumak:cocktails:%d", limit)
	var cs []backend.RandomCocktail
	if s.cacheGet(ctx, key, &cs) {
		return cs, nil
	}
	cs, err := s.api.RandomCocktails(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, cs, cocktailsTTL)
	return cs, nil
}

// cacheGet reports whether key was present and decoded into out. Cache
// trouble is logged and treated as a miss; redis being down must never take
// a page down with it.
func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
