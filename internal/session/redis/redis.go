package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

// Store keeps the session in one redis hash per project, so operators on
// the same host share a login.
type Store struct {
	client *goredis.Client
	key    string
}

func New(client *goredis.Client, prefix, projectID string) *Store {
	return &Store{
		client: client,
		key:    prefix + ":" + projectID,
	}
}

func (s *Store) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, field).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, field, value string) error {
	return s.client.HSet(ctx, s.key, field, value).Err()
}

func (s *Store) Delete(ctx context.Context, field string) error {
	return s.client.HDel(ctx, s.key, field).Err()
}

func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
