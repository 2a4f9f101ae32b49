// Пакет kvstore — персистентное key-value хранилище клиента
// (access token и последний аутентифицированный пользователь).
// Внедряется явно в диспетчер запросов и сессию; глобального экземпляра нет.
package kvstore

import (
	"context"
	"errors"
)

// Ключи, которые использует клиент.
const (
	// KeyAccessToken — bearer token текущей сессии.
	KeyAccessToken = "accessToken"
	// KeyUser — JSON последнего аутентифицированного пользователя.
	KeyUser = "user"
)

// ErrNotFound — ключ отсутствует в хранилище.
var ErrNotFound = errors.New("ключ не найден")

// Store — хранилище строковых значений по ключу.
type Store interface {
	// Get возвращает значение или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set добавляет или заменяет значение.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается.
	Remove(ctx context.Context, key string) error
}
