// Package kv provides the named-record persistence layer backed by Redis.
//
// Every collection in the application is one JSON document under a fixed key.
// Reads are best-effort: a missing or corrupt record degrades to the caller's
// zero value and is logged, never surfaced. Higher layers treat storage as
// always available and possibly empty.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record keys. One record per collection, plus one task record per username.
const (
	KeyUsers         = "campus:users"
	KeyLegacyTasks   = "campus:tasks"
	KeyComplaints    = "campus:complaints"
	KeyPermissions   = "campus:permissions"
	KeyFeedback      = "campus:feedback"
	KeyEvents        = "campus:events"
	KeyRegistrations = "campus:event_registrations"
	KeyReactions     = "campus:complaint_reactions"
	KeySession       = "campus:session"

	taskKeyPrefix = "campus:tasks:"
)

// TaskKey returns the per-owner task partition key.
func TaskKey(username string) string {
	return taskKeyPrefix + username
}

// Store is a thin named-record JSON store over a Redis client.
type Store struct {
	client *redis.Client
}

// Open parses a Redis URL, connects, and verifies the connection.
func Open(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// ReadJSON loads the record at key into out. Missing keys and corrupt
// records leave out untouched; both are logged and neither is an error.
func (s *Store) ReadJSON(ctx context.Context, key string, out any) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return
	}
	if err != nil {
		log.Printf("kv: read %s: %v", key, err)
		return
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("kv: corrupt record %s, using default: %v", key, err)
	}
}

// WriteJSON marshals v and stores it at key with no expiry.
func (s *Store) WriteJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes a record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Ping checks whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
