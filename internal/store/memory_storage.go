package store

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/storage/memory/v2"
)

// MemoryStorage implements Storage on top of an in-process key-value store.
// Each key holds a JSON field map, mirroring the redis hash layout. Suitable
// for single-node deployments and tests.
type MemoryStorage struct {
	mu   sync.Mutex
	conn *memory.Storage
}

type memEntry struct {
	Fields   map[string]json.RawMessage `json:"fields"`
	ExpireAt time.Time                  `json:"expireAt"` // zero value means no expiry
}

func (s *MemoryStorage) load(key string) (*memEntry, error) {
	raw, err := s.conn.Get(key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var entry memEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	if !entry.ExpireAt.IsZero() && time.Now().After(entry.ExpireAt) {
		s.conn.Delete(key)
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryStorage) save(key string, entry *memEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !entry.ExpireAt.IsZero() {
		ttl = time.Until(entry.ExpireAt)
		if ttl <= 0 {
			return s.conn.Delete(key)
		}
	}
	return s.conn.Set(key, raw, ttl)
}

func (s *MemoryStorage) Get(ctx context.Context, key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil || len(entry.Fields) == 0 {
		return ErrNotFound
	}
	obj, err := json.Marshal(entry.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(obj, val)
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	entry := &memEntry{Fields: fields}
	if expiresIn == -1 {
		// keep the existing expiry, matching redis HSET on a live key
		if existing, err := s.load(key); err == nil && existing != nil {
			entry.ExpireAt = existing.ExpireAt
		}
	} else if expiresIn > 0 {
		entry.ExpireAt = time.Now().Add(expiresIn)
	}
	return s.save(key, entry)
}

func (s *MemoryStorage) Save(ctx context.Context, key string, val any) error {
	return s.Set(ctx, key, val, -1)
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	return s.conn.Delete(key)
}

func (s *MemoryStorage) Expire(ctx context.Context, key string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	entry.ExpireAt = expiresAt
	return s.save(key, entry)
}

func (s *MemoryStorage) SetAttr(ctx context.Context, key string, field string, val any, exp ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &memEntry{Fields: map[string]json.RawMessage{}}
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	entry.Fields[field] = raw
	// per-field expiry is not supported in memory; fall back to key expiry
	if len(exp) > 0 {
		entry.ExpireAt = time.Now().Add(exp[0])
	}
	return s.save(key, entry)
}

func (s *MemoryStorage) GetAttr(ctx context.Context, key, field string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	raw, ok := entry.Fields[field]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, val)
}

func (s *MemoryStorage) IncrAttr(ctx context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		entry = &memEntry{Fields: map[string]json.RawMessage{}}
	}
	var current int64
	if raw, ok := entry.Fields[field]; ok {
		current, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	current += delta
	entry.Fields[field] = json.RawMessage(strconv.FormatInt(current, 10))
	if err := s.save(key, entry); err != nil {
		return 0, err
	}
	return current, nil
}

func (s *MemoryStorage) DelAttr(ctx context.Context, key string, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(key)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	delete(entry.Fields, field)
	return s.save(key, entry)
}

func (s *MemoryStorage) ExpireAttr(ctx context.Context, key string, expiresAt time.Time, fields ...string) error {
	return s.Expire(ctx, key, expiresAt)
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conn: memory.New(),
	}
}
