// auth.go — endpoints аутентификации: ключ шифрования, вход, регистрация,
// коды подтверждения, обновление токена и выход.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/admin-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/service"
)

// EncryptionKey — GET /api/users/encryption-key.
func (h *APIHandler) EncryptionKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.auth.EncryptionKey()
	h.respond(w, r, key, err)
}

// LoginWithPassword — POST /api/users/login-password.
func (h *APIHandler) LoginWithPassword(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordLoginRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.auth.LoginWithPassword(r.Context(), req, clientIP(r))
	h.respondLogin(w, r, user, err)
}

// LoginWithCode — POST /api/users/login.
func (h *APIHandler) LoginWithCode(w http.ResponseWriter, r *http.Request) {
	var req model.CodeLoginRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.auth.LoginWithCode(r.Context(), req, clientIP(r))
	h.respondLogin(w, r, user, err)
}

// RegisterUser — POST /api/users/register.
func (h *APIHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), req, clientIP(r))
	h.respondLogin(w, r, user, err)
}

// respondLogin дублирует access token в cookie accessToken
// для проверки страниц на границе.
func (h *APIHandler) respondLogin(w http.ResponseWriter, r *http.Request, user *model.User, err error) {
	if err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AccessTokenCookie,
			Value:    user.AccessToken,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	h.respond(w, r, user, err)
}

// SendEmailCode — POST /api/users/send-email-code.
func (h *APIHandler) SendEmailCode(w http.ResponseWriter, r *http.Request) {
	h.sendCode(w, r, service.CodePurposeRegister)
}

// SendLoginCode — POST /api/users/send-login-code.
func (h *APIHandler) SendLoginCode(w http.ResponseWriter, r *http.Request) {
	h.sendCode(w, r, service.CodePurposeLogin)
}

func (h *APIHandler) sendCode(w http.ResponseWriter, r *http.Request, purpose string) {
	var req model.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.auth.SendCode(r.Context(), req.Email, purpose))
}

// RefreshToken — POST /api/users/refresh-token.
func (h *APIHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	h.respond(w, r, pair, err)
}

// Logout — POST /api/users/logout. Сбрасывает cookie accessToken.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.auth.Logout(req.UserID, middleware.SubjectFromContext(r.Context()))
	if err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:   middleware.AccessTokenCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	h.respond(w, r, nil, err)
}

// JWKS — GET /.well-known/jwks.json.
func (h *APIHandler) JWKS(w http.ResponseWriter, r *http.Request) {
	data, err := h.tokens.JWKS(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
