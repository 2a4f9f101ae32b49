// users.go — управление пользователями и их ролями.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// UserService — пользователи, их роли и итоговые права.
type UserService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	hashCost int
	logger   *slog.Logger
}

// NewUserService создаёт сервис пользователей.
// hashCost — стоимость bcrypt (0 — bcrypt.DefaultCost).
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	hashCost int,
	logger *slog.Logger,
) *UserService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:    users,
		roles:    roles,
		hashCost: hashCost,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает страницу пользователей с ролями.
func (s *UserService) List(ctx context.Context, q ListQuery, isActive *bool) (*model.UserList, error) {
	start := time.Now()
	q = q.Normalize()

	items, total, err := s.users.Search(ctx, repository.UserSearchParams{ListParams: q.params(), IsActive: isActive})
	if err != nil {
		return nil, fmt.Errorf("поиск пользователей: %w", err)
	}
	observeSearch(s.logger, "users", start, total, len(items))

	list := &model.UserList{Users: make([]model.User, len(items)), Total: total, Page: q.Page, Limit: q.Limit}
	for i, u := range items {
		list.Users[i] = *u
	}
	return list, nil
}

// Create создаёт пользователя и назначает ему роли.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if len(req.RoleIDs) > 0 {
		if err := s.checkRoles(ctx, req.RoleIDs); err != nil {
			return nil, err
		}
		if err := s.users.SetRoles(ctx, user.ID, req.RoleIDs); err != nil {
			return nil, err
		}
	}
	if user.Roles, err = s.users.Roles(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Пользователь создан", slog.String("user_id", user.ID), slog.String("email", user.Email))
	return user, nil
}

// Delete удаляет пользователей. Пустой результат — ErrNotFound.
func (s *UserService) Delete(ctx context.Context, ids []string) error {
	n, err := s.users.Delete(ctx, ids)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("Пользователи удалены", slog.Int("count", n))
	return nil
}

// SetActive включает или выключает пользователей.
func (s *UserService) SetActive(ctx context.Context, ids []string, active bool) error {
	n, err := s.users.SetActive(ctx, ids, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRole назначает одну роль.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID string) error {
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	if err := s.checkRoles(ctx, []string{roleID}); err != nil {
		return err
	}
	return s.users.AddRole(ctx, userID, roleID)
}

// AssignRoles заменяет набор ролей пользователя.
func (s *UserService) AssignRoles(ctx context.Context, userID string, roleIDs []string) error {
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	if err := s.checkRoles(ctx, roleIDs); err != nil {
		return err
	}
	return s.users.SetRoles(ctx, userID, roleIDs)
}

// RemoveRole снимает роль.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID string) error {
	return notFound(s.users.RemoveRole(ctx, userID, roleID))
}

// Roles — роли пользователя.
func (s *UserService) Roles(ctx context.Context, userID string) ([]model.Role, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Roles(ctx, userID)
}

// Permissions — итоговые права пользователя.
func (s *UserService) Permissions(ctx context.Context, userID string) ([]model.Permission, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Permissions(ctx, userID)
}

// HasPermission проверяет право action:resource.
func (s *UserService) HasPermission(ctx context.Context, userID, action, resource string) (bool, error) {
	return s.users.HasPermission(ctx, userID, action, resource)
}

// HasRole проверяет роль по коду.
func (s *UserService) HasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	return s.users.HasRole(ctx, userID, roleCode)
}

// Get возвращает пользователя с ролями.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if user.Roles, err = s.users.Roles(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) checkUser(ctx context.Context, userID string) error {
	_, err := s.users.GetByID(ctx, userID)
	return notFound(err)
}

func (s *UserService) checkRoles(ctx context.Context, roleIDs []string) error {
	for _, id := range roleIDs {
		if _, err := s.roles.GetByID(ctx, id); err != nil {
			return notFound(err)
		}
	}
	return nil
}

// notFound переводит repository.ErrNotFound в ErrNotFound сервиса.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// conflict переводит repository.ErrConflict в ErrConflict сервиса.
func conflict(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return ErrConflict
	}
	return notFound(err)
}
