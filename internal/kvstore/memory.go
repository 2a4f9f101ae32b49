package kvstore

import (
	"context"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики in-memory хранилища.
var (
	memoryHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_kvstore_hits_total",
		Help: "Общее количество попаданий в in-memory хранилище.",
	})
	memoryMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_kvstore_misses_total",
		Help: "Общее количество промахов in-memory хранилища.",
	})
)

// ClosableStore — хранилище, которое закрывается после команды.
type ClosableStore interface {
	Store
	io.Closer
}

var (
	_ ClosableStore = (*MemoryStore)(nil)
	_ ClosableStore = (*SQLiteStore)(nil)
)

// ephemeralSize — ёмкость хранилища без файла состояния.
const ephemeralSize = 16

// NewEphemeralStore — хранилище на время одного процесса.
func NewEphemeralStore() *MemoryStore {
	return NewMemoryStore(ephemeralSize, 0)
}

// MemoryStore — Store поверх expirable LRU.
// Используется в тестах и для сессий без файла состояния (флаг --ephemeral).
type MemoryStore struct {
	cache *expirable.LRU[string, string]
}

// NewMemoryStore создаёт хранилище на maxSize записей.
// ttl = 0 — записи не истекают.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, string](maxSize, nil, ttl)}
}

// Get возвращает значение или ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	val, ok := s.cache.Get(key)
	if !ok {
		memoryMissesTotal.Inc()
		return "", ErrNotFound
	}
	memoryHitsTotal.Inc()
	return val, nil
}

// Set добавляет или заменяет значение.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.cache.Add(key, value)
	return nil
}

// Remove удаляет ключ.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Close очищает хранилище.
func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
