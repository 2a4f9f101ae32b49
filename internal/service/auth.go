// auth.go — регистрация, вход по паролю и по email-коду, обновление
// и отзыв токенов.
// Пароль при входе приходит зашифрованным одноразовым AES-ключом,
// выданным GET /api/users/encryption-key.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/pwcrypt"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// Назначение кода подтверждения.
const (
	CodePurposeRegister = "register"
	CodePurposeLogin    = "login"
)

// DefaultRoleCode — роль, назначаемая при регистрации.
const DefaultRoleCode = "user"

// cacheSize — максимум одновременно живых ключей и кодов.
const cacheSize = 10000

// Prometheus-метрики аутентификации.
var loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ac_logins_total",
	Help: "Попытки входа по способу и результату.",
}, []string{"method", "result"})

// Mailer отправляет код подтверждения.
type Mailer interface {
	SendCode(ctx context.Context, email, purpose, code string) error
}

// LogMailer «отправляет» письма в лог. Только для разработки.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer создаёт LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(slog.String("component", "mailer"))}
}

// SendCode пишет код в лог.
func (m *LogMailer) SendCode(_ context.Context, email, purpose, code string) error {
	m.logger.Info("Код подтверждения",
		slog.String("email", email),
		slog.String("purpose", purpose),
		slog.String("code", code),
	)
	return nil
}

// AuthConfig — параметры AuthService.
type AuthConfig struct {
	// KeyTTL — время жизни ключа шифрования пароля
	KeyTTL time.Duration
	// CodeTTL — время жизни кода подтверждения
	CodeTTL time.Duration
	// HashCost — стоимость bcrypt (0 — bcrypt.DefaultCost)
	HashCost int
}

// AuthService — аутентификация пользователей.
type AuthService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	tokens   *TokenService
	mailer   Mailer
	keys     *Cache[string]
	codes    *Cache[string]
	keyTTL   time.Duration
	hashCost int
	logger   *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(
	cfg AuthConfig,
	users repository.UserRepository,
	roles repository.RoleRepository,
	tokens *TokenService,
	mailer Mailer,
	logger *slog.Logger,
) *AuthService {
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		roles:    roles,
		tokens:   tokens,
		mailer:   mailer,
		keys:     NewCache[string]("encryption_keys", cacheSize, cfg.KeyTTL),
		codes:    NewCache[string]("email_codes", cacheSize, cfg.CodeTTL),
		keyTTL:   cfg.KeyTTL,
		hashCost: cost,
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// EncryptionKey выдаёт одноразовый ключ шифрования пароля.
func (s *AuthService) EncryptionKey() (*model.EncryptionKey, error) {
	key, err := pwcrypt.GenerateKey()
	if err != nil {
		return nil, err
	}
	keyID := uuid.NewString()
	s.keys.Set(keyID, key)

	return &model.EncryptionKey{
		Key:       key,
		KeyID:     keyID,
		ExpiresAt: time.Now().Add(s.keyTTL).UTC(),
	}, nil
}

// LoginWithPassword — вход по паролю, зашифрованному ключом req.KeyID.
// Ключ одноразовый: повторный вход с тем же KeyID получает ErrKeyExpired.
func (s *AuthService) LoginWithPassword(ctx context.Context, req model.PasswordLoginRequest, ip string) (*model.User, error) {
	user, err := s.loginWithPassword(ctx, req)
	if err != nil {
		loginsTotal.WithLabelValues("password", "fail").Inc()
		return nil, err
	}
	return s.complete(ctx, user, "password", ip)
}

func (s *AuthService) loginWithPassword(ctx context.Context, req model.PasswordLoginRequest) (*model.User, error) {
	key, ok := s.keys.Take(req.KeyID)
	if !ok {
		return nil, ErrKeyExpired
	}
	password, err := pwcrypt.Decrypt(req.Password, key)
	if err != nil {
		return nil, ErrDecryption
	}

	user, err := s.activeUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SendCode генерирует код и отправляет его на email.
// Для регистрации email должен быть свободен, для входа — существовать.
func (s *AuthService) SendCode(ctx context.Context, email, purpose string) error {
	email = normalizeEmail(email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && purpose == CodePurposeRegister:
		return ErrEmailExists
	case errors.Is(err, repository.ErrNotFound) && purpose == CodePurposeLogin:
		return ErrNotFound
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("проверка email: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	s.codes.Set(codeKey(purpose, email), code)

	if err := s.mailer.SendCode(ctx, email, purpose, code); err != nil {
		s.codes.Delete(codeKey(purpose, email))
		return fmt.Errorf("отправка кода: %w", err)
	}
	return nil
}

// LoginWithCode — вход по коду из письма.
func (s *AuthService) LoginWithCode(ctx context.Context, req model.CodeLoginRequest, ip string) (*model.User, error) {
	email := normalizeEmail(req.Email)
	if !s.checkCode(CodePurposeLogin, email, req.EmailVerificationCode) {
		loginsTotal.WithLabelValues("code", "fail").Inc()
		return nil, ErrInvalidCode
	}
	user, err := s.activeUser(ctx, email)
	if err != nil {
		loginsTotal.WithLabelValues("code", "fail").Inc()
		return nil, err
	}
	return s.complete(ctx, user, "code", ip)
}

// Register создаёт пользователя по коду из письма и сразу выполняет вход.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, ip string) (*model.User, error) {
	email := normalizeEmail(req.Email)
	if !s.checkCode(CodePurposeRegister, email, req.EmailVerificationCode) {
		return nil, ErrInvalidCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	user := &model.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          req.Name,
		PasswordHash:  string(hash),
		EmailVerified: true,
		IsActive:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.assignDefaultRole(ctx, user.ID); err != nil {
		// Пользователь без роли не должен остаться в базе
		if _, delErr := s.users.Delete(ctx, []string{user.ID}); delErr != nil {
			s.logger.Error("Не удалось удалить пользователя после сбоя регистрации",
				slog.String("user_id", user.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("назначение роли по умолчанию: %w", err)
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return s.complete(ctx, user, "register", ip)
}

// assignDefaultRole выдаёт новому пользователю роль DefaultRoleCode,
// если она заведена.
func (s *AuthService) assignDefaultRole(ctx context.Context, userID string) error {
	role, err := s.roles.GetByCode(ctx, DefaultRoleCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.users.AddRole(ctx, userID, role.ID)
}

// Refresh обменивает refresh token на новую пару.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout отзывает токены пользователя. Выйти можно только из своей сессии.
func (s *AuthService) Logout(userID, callerID string) error {
	if userID != callerID {
		return ErrForbidden
	}
	s.tokens.Revoke(userID)
	s.logger.Info("Выход пользователя", slog.String("user_id", userID))
	return nil
}

// Authenticate проверяет access token и возвращает его claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.tokens.Verify(ctx, token, TokenTypeAccess)
}

// activeUser ищет пользователя; отсутствие — ErrInvalidCredentials.
func (s *AuthService) activeUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// complete фиксирует вход, выпускает токены и подгружает роли.
func (s *AuthService) complete(ctx context.Context, user *model.User, method, ip string) (*model.User, error) {
	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, ip, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	user.LastLoginIP = ip
	user.LoginCount++

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	user.AccessToken = pair.AccessToken
	user.RefreshToken = pair.RefreshToken

	if user.Roles, err = s.users.Roles(ctx, user.ID); err != nil {
		return nil, err
	}

	loginsTotal.WithLabelValues(method, "ok").Inc()
	s.logger.Debug("Вход выполнен",
		slog.String("user_id", user.ID),
		slog.String("method", method),
	)
	return user, nil
}

// checkCode сверяет код; совпавший код удаляется.
func (s *AuthService) checkCode(purpose, email, code string) bool {
	key := codeKey(purpose, email)
	want, ok := s.codes.Get(key)
	if !ok || want != code {
		return false
	}
	s.codes.Delete(key)
	return true
}

func codeKey(purpose, email string) string {
	return purpose + ":" + email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode — шесть случайных цифр.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("генерация кода: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
