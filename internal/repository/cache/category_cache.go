// Package cache puts a Redis read-through layer in front of category lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the subset of a key-value client the cache needs.
// Get returns ErrMiss when the key is absent.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
	Del(keys ...string) error
}

// ErrMiss reports an absent key.
var ErrMiss = errors.New("cache miss")

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(key string) (string, error) {
	value, err := s.client.Get(key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return value, err
}

func (s *RedisStore) Set(key, value string, ttl time.Duration) error {
	return s.client.Set(key, value, ttl).Err()
}

func (s *RedisStore) Del(keys ...string) error {
	return s.client.Del(keys...).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// CategoryRepository wraps a domain.CategoryRepository with a read-through cache
// on GetByID. Writes go to the store first, then evict the cached entry.
// Cache failures are logged and never fail the request.
type CategoryRepository struct {
	next  domain.CategoryRepository
	store Store
	ttl   time.Duration
}

// NewCategoryRepository builds the caching decorator.
func NewCategoryRepository(next domain.CategoryRepository, store Store, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{next: next, store: store, ttl: ttl}
}

func categoryKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("category:%s:%s", userID, id)
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	return r.next.Create(ctx, category)
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	key := categoryKey(userID, id)

	raw, err := r.store.Get(key)
	switch {
	case err == nil:
		var cached domain.Category
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return &cached, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cached category")
	case !errors.Is(err, ErrMiss):
		log.Warn().Err(err).Str("key", key).Msg("Category cache read failed")
	}

	category, err := r.next.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(category); err == nil {
		if err := r.store.Set(key, string(data), r.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Category cache write failed")
		}
	}
	return category, nil
}

func (r *CategoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return r.next.GetByUserID(ctx, userID)
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	updated, err := r.next.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	r.evict(category.UserID, category.ID)
	return updated, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := r.next.Delete(ctx, userID, id); err != nil {
		return err
	}
	r.evict(userID, id)
	return nil
}

func (r *CategoryRepository) evict(userID, id uuid.UUID) {
	key := categoryKey(userID, id)
	if err := r.store.Del(key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Category cache evict failed")
	}
}
