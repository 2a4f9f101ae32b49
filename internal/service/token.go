// token.go — выпуск и проверка RS256 JWT dev API.
// RSA-ключ генерируется при старте и публикуется через JWKS;
// проверка подписи идёт через keyfunc поверх того же jwkset-хранилища,
// что и у внешнего потребителя JWKS.
package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// Типы токенов в claim token_type.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// refreshTTLFactor — во сколько раз refresh token живёт дольше access token.
const refreshTTLFactor = 7

// rsaKeySize — размер RSA-ключа подписи.
const rsaKeySize = 2048

// Claims — claims токенов dev API.
type Claims struct {
	jwt.RegisteredClaims
	// Email — email пользователя
	Email string `json:"email,omitempty"`
	// TokenType — access или refresh
	TokenType string `json:"token_type"`
	// Generation — поколение сессий пользователя; Revoke увеличивает его
	Generation uint64 `json:"gen"`
}

// TokenConfig — параметры выпуска токенов.
type TokenConfig struct {
	// Issuer — значение claim iss
	Issuer string
	// TTL — время жизни access token
	TTL time.Duration
	// Leeway — допустимое отклонение времени при проверке
	Leeway time.Duration
}

// TokenService выпускает и проверяет токены.
type TokenService struct {
	cfg        TokenConfig
	privateKey *rsa.PrivateKey
	kid        string
	storage    jwkset.Storage
	keyfunc    keyfunc.Keyfunc
	logger     *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewTokenService генерирует ключ подписи и готовит JWKS.
func NewTokenService(ctx context.Context, cfg TokenConfig, logger *slog.Logger) (*TokenService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeySize)
	if err != nil {
		return nil, fmt.Errorf("генерация RSA-ключа: %w", err)
	}
	kid := uuid.NewString()

	jwk, err := jwkset.NewJWKFromKey(&privateKey.PublicKey, jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgRS256,
			KID: kid,
			USE: jwkset.UseSig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWK: %w", err)
	}

	storage := jwkset.NewMemoryStorage()
	if err := storage.KeyWrite(ctx, jwk); err != nil {
		return nil, fmt.Errorf("запись JWK в хранилище: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	logger.Info("Ключ подписи JWT сгенерирован", slog.String("kid", kid))

	return &TokenService{
		cfg:         cfg,
		privateKey:  privateKey,
		kid:         kid,
		storage:     storage,
		keyfunc:     kf,
		logger:      logger.With(slog.String("component", "token_service")),
		generations: make(map[string]uint64),
	}, nil
}

// Issue выпускает пару access/refresh для пользователя.
func (s *TokenService) Issue(u *model.User) (model.TokenPair, error) {
	gen := s.generation(u.ID)

	access, err := s.sign(u, TokenTypeAccess, s.cfg.TTL, gen)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := s.sign(u, TokenTypeRefresh, s.cfg.TTL*refreshTTLFactor, gen)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(u *model.User, tokenType string, ttl time.Duration, gen uint64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:      u.Email,
		TokenType:  tokenType,
		Generation: gen,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, срок, issuer, тип и поколение токена.
func (s *TokenService) Verify(ctx context.Context, tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.cfg.Leeway),
	}
	if s.cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyfunc.KeyfuncCtx(ctx), parserOpts...)
	if err != nil || !token.Valid {
		if err != nil {
			s.logger.Debug("JWT валидация не пройдена", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidToken
	}

	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Generation != s.generation(claims.Subject) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke отзывает все выданные пользователю токены.
func (s *TokenService) Revoke(userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()
}

func (s *TokenService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// JWKS возвращает публичный JWK Set в JSON.
func (s *TokenService) JWKS(ctx context.Context) (json.RawMessage, error) {
	data, err := s.storage.JSONPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("сериализация JWKS: %w", err)
	}
	return data, nil
}

// CheckReady — в хранилище есть ключ подписи.
func (s *TokenService) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	keys, err := s.storage.KeyReadAll(ctx)
	if err != nil {
		return "fail", fmt.Sprintf("JWKS недоступен: %v", err)
	}
	if len(keys) == 0 {
		return "degraded", "JWKS: нет ключей"
	}
	return "ok", fmt.Sprintf("ключей: %d", len(keys))
}
