package origin

import (
	"context"
	"sync"
)

type sessionKey struct{}

// WithSession привязывает вызовы загрузчиков к сессии формы. В пределах сессии
// применяется только результат последнего запроса по каждому ключу.
func WithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func SessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// SequenceStore выдаёт монотонно растущие номера запросов по ключу.
type SequenceStore interface {
	Next(ctx context.Context, key string) (int64, error)
	Latest(ctx context.Context, key string) (int64, error)
}

type MemorySequenceStore struct {
	mu  sync.Mutex
	seq map[string]int64
}

func NewMemorySequenceStore() *MemorySequenceStore {
	return &MemorySequenceStore{seq: make(map[string]int64)}
}

func (s *MemorySequenceStore) Next(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[key]++
	return s.seq[key], nil
}

func (s *MemorySequenceStore) Latest(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[key], nil
}
