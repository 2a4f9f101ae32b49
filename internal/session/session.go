// Пакет session — сессия пользователя консоли: вход, регистрация, выход.
// Пользователь и access token хранятся в kvstore под ключами user и
// accessToken; диспетчер запросов читает токен оттуда же.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/kvstore"
	"github.com/bigkaa/goartstore/admin-console/internal/pwcrypt"
)

// ErrNotAuthenticated — нет действующей сессии.
var ErrNotAuthenticated = errors.New("未登录或登录已过期")

// API — endpoints аутентификации, которые использует сессия.
type API interface {
	EncryptionKey(ctx context.Context) (*model.EncryptionKey, error)
	LoginWithPassword(ctx context.Context, req model.PasswordLoginRequest) (*model.User, error)
	LoginWithCode(ctx context.Context, req model.CodeLoginRequest) (*model.User, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	SendEmailCode(ctx context.Context, email string) error
	SendLoginCode(ctx context.Context, email string) error
	Logout(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error)
}

// Session — сессия пользователя поверх kvstore.
type Session struct {
	api    API
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// New создаёт сессию.
func New(api API, store kvstore.Store, logger *slog.Logger) *Session {
	return &Session{
		api:    api,
		store:  store,
		logger: logger.With(slog.String("component", "session")),
		now:    time.Now,
	}
}

// Login — вход по паролю. Пароль шифруется одноразовым ключом сервера.
func (s *Session) Login(ctx context.Context, form LoginForm) (*model.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	key, err := s.api.EncryptionKey(ctx)
	if err != nil {
		return nil, err
	}
	encrypted, err := pwcrypt.Encrypt(form.Password, key.Key)
	if err != nil {
		return nil, err
	}

	user, err := s.api.LoginWithPassword(ctx, model.PasswordLoginRequest{
		Email:    form.Email,
		Password: encrypted,
		KeyID:    key.KeyID,
	})
	if err != nil {
		return nil, err
	}
	return user, s.persist(ctx, user)
}

// LoginWithCode — вход по коду из письма.
func (s *Session) LoginWithCode(ctx context.Context, form CodeLoginForm) (*model.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	user, err := s.api.LoginWithCode(ctx, model.CodeLoginRequest{
		Email:                 form.Email,
		EmailVerificationCode: form.Code,
	})
	if err != nil {
		return nil, err
	}
	return user, s.persist(ctx, user)
}

// Register регистрирует пользователя; имя совпадает с email.
func (s *Session) Register(ctx context.Context, form RegisterForm) (*model.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	user, err := s.api.Register(ctx, model.RegisterRequest{
		Email:                 form.Email,
		Name:                  form.Email,
		Password:              form.Password,
		EmailVerificationCode: form.Code,
	})
	if err != nil {
		return nil, err
	}
	return user, s.persist(ctx, user)
}

// SendVerificationCode отправляет код регистрации.
func (s *Session) SendVerificationCode(ctx context.Context, form EmailForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.api.SendEmailCode(ctx, form.Email)
}

// SendLoginCode отправляет код входа.
func (s *Session) SendLoginCode(ctx context.Context, form EmailForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.api.SendLoginCode(ctx, form.Email)
}

// Logout завершает сессию на сервере (если пользователь известен)
// и удаляет локальные ключи. Ошибка сервера не мешает локальному выходу.
func (s *Session) Logout(ctx context.Context) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать пользователя", slog.String("error", err.Error()))
	}
	if user != nil && user.ID != "" {
		if err := s.api.Logout(ctx, user.ID); err != nil {
			s.logger.Warn("Выход на сервере не удался",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return errors.Join(
		s.store.Remove(ctx, kvstore.KeyUser),
		s.store.Remove(ctx, kvstore.KeyAccessToken),
	)
}

// Refresh обменивает сохранённый refresh token на новую пару токенов.
func (s *Session) Refresh(ctx context.Context) (*model.User, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil || user.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}
	pair, err := s.api.RefreshToken(ctx, user.RefreshToken)
	if err != nil {
		return nil, err
	}
	user.AccessToken = pair.AccessToken
	user.RefreshToken = pair.RefreshToken
	return user, s.persist(ctx, user)
}

// AccessToken возвращает токен или "" без сессии.
func (s *Session) AccessToken(ctx context.Context) string {
	token, err := s.store.Get(ctx, kvstore.KeyAccessToken)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn("Не удалось прочитать токен", slog.String("error", err.Error()))
		}
		return ""
	}
	return token
}

// IsAuthenticated — есть токен и он не истёк. Токен, который не
// разбирается как JWT, считается действующим: срок проверит сервер.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token := s.AccessToken(ctx)
	if token == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
		return false
	}
	return true
}

// CurrentUser возвращает сохранённого пользователя или nil.
func (s *Session) CurrentUser(ctx context.Context) (*model.User, error) {
	raw, err := s.store.Get(ctx, kvstore.KeyUser)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("разбор сохранённого пользователя: %w", err)
	}
	return &user, nil
}

// Require возвращает ErrNotAuthenticated, если сессии нет.
func (s *Session) Require(ctx context.Context) error {
	if !s.IsAuthenticated(ctx) {
		return ErrNotAuthenticated
	}
	return nil
}

// persist сохраняет пользователя и токен.
func (s *Session) persist(ctx context.Context, user *model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("сериализация пользователя: %w", err)
	}
	if err := s.store.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("сохранение пользователя: %w", err)
	}
	// Без нового токена старый не должен пережить смену пользователя
	if user.AccessToken == "" {
		if err := s.store.Remove(ctx, kvstore.KeyAccessToken); err != nil {
			return fmt.Errorf("удаление токена: %w", err)
		}
	} else if err := s.store.Set(ctx, kvstore.KeyAccessToken, user.AccessToken); err != nil {
		return fmt.Errorf("сохранение токена: %w", err)
	}
	s.logger.Info("Сессия открыта", slog.String("user_id", user.ID), slog.String("email", user.Email))
	return nil
}
