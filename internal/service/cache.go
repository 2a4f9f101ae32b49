// Пакет service — бизнес-логика dev API: аутентификация, пользователи,
// роли, права.
// cache.go — LRU-кэши с TTL для одноразовых ключей шифрования,
// кодов подтверждения и отзыва токенов.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэшей.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ac_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэши dev API.",
	}, []string{"cache"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ac_cache_misses_total",
		Help: "Общее количество промахов LRU-кэшей dev API.",
	}, []string{"cache"})
)

// Cache — LRU-кэш с автоматическим TTL.
// Записи живут только в памяти процесса: перезапуск dev API
// инвалидирует все выданные ключи и коды.
type Cache[V any] struct {
	name  string
	cache *expirable.LRU[string, V]
}

// NewCache создаёт кэш с указанным максимальным размером и TTL.
// name — значение лейбла cache в метриках.
func NewCache[V any](name string, maxSize int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		name:  name,
		cache: expirable.NewLRU[string, V](maxSize, nil, ttl),
	}
}

// Get возвращает значение по ключу.
// Обновляет Prometheus-метрики hit/miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		cacheHitsTotal.WithLabelValues(c.name).Inc()
		return val, true
	}
	cacheMissesTotal.WithLabelValues(c.name).Inc()
	return val, false
}

// Take возвращает значение и удаляет его (одноразовые ключи и коды).
func (c *Cache[V]) Take(key string) (V, bool) {
	val, ok := c.Get(key)
	if ok {
		c.cache.Remove(key)
	}
	return val, ok
}

// Set добавляет или обновляет запись.
func (c *Cache[V]) Set(key string, val V) {
	c.cache.Add(key, val)
}

// Delete удаляет запись.
func (c *Cache[V]) Delete(key string) {
	c.cache.Remove(key)
}

// Len — количество живых записей.
func (c *Cache[V]) Len() int {
	return c.cache.Len()
}
