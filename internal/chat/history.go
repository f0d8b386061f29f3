package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"lodestar/internal/rag"
)

// History stores per-session conversation transcripts.
type History interface {
	// Append adds messages to the end of a session's transcript.
	Append(ctx context.Context, sessionID string, messages ...rag.Message) error
	// Recent returns up to limit of the newest messages in order.
	Recent(ctx context.Context, sessionID string, limit int) ([]rag.Message, error)
	// Clear removes a session's transcript.
	Clear(ctx context.Context, sessionID string) error
}

// MemoryHistory keeps transcripts in process memory. Suitable for tests and
// single-instance deployments.
type MemoryHistory struct {
	mu       sync.Mutex
	sessions map[string][]rag.Message
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{sessions: make(map[string][]rag.Message)}
}

func (h *MemoryHistory) Append(_ context.Context, sessionID string, messages ...rag.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = append(h.sessions[sessionID], messages...)
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, sessionID string, limit int) ([]rag.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	transcript := h.sessions[sessionID]
	if limit > 0 && len(transcript) > limit {
		transcript = transcript[len(transcript)-limit:]
	}
	out := make([]rag.Message, len(transcript))
	copy(out, transcript)
	return out, nil
}

func (h *MemoryHistory) Clear(_ context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
	return nil
}

// RedisHistory persists transcripts in a Redis list per session, trimmed to
// a maximum length on every append.
type RedisHistory struct {
	client *redis.Client
	maxLen int
}

// NewRedisHistory connects to Redis and verifies the connection. maxLen
// bounds the stored transcript length per session; 0 keeps everything.
func NewRedisHistory(ctx context.Context, addr, password string, db, maxLen int) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisHistory{client: client, maxLen: maxLen}, nil
}

// Close releases the Redis connection.
func (h *RedisHistory) Close() error { return h.client.Close() }

func historyKey(sessionID string) string { return "chat:history:" + sessionID }

func (h *RedisHistory) Append(ctx context.Context, sessionID string, messages ...rag.Message) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		values = append(values, data)
	}
	key := historyKey(sessionID)
	if err := h.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	if h.maxLen > 0 {
		if err := h.client.LTrim(ctx, key, int64(-h.maxLen), -1).Err(); err != nil {
			return fmt.Errorf("redis ltrim: %w", err)
		}
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, sessionID string, limit int) ([]rag.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := h.client.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	out := make([]rag.Message, 0, len(raw))
	for _, item := range raw {
		var m rag.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *RedisHistory) Clear(ctx context.Context, sessionID string) error {
	if err := h.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
