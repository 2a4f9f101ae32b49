// permissions.go — управление правами и построение дерева меню.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// PermissionService — права доступа.
type PermissionService struct {
	permissions repository.PermissionRepository
	logger      *slog.Logger
}

// NewPermissionService создаёт сервис прав.
func NewPermissionService(permissions repository.PermissionRepository, logger *slog.Logger) *PermissionService {
	return &PermissionService{
		permissions: permissions,
		logger:      logger.With(slog.String("component", "permission_service")),
	}
}

// List возвращает страницу прав с фильтрами action/resource.
func (s *PermissionService) List(ctx context.Context, q ListQuery, action, resource string) (*model.PermissionList, error) {
	start := time.Now()
	items, total, err := s.permissions.Search(ctx, repository.PermissionSearchParams{
		ListParams: q.params(),
		Action:     action,
		Resource:   resource,
	})
	if err != nil {
		return nil, fmt.Errorf("поиск прав: %w", err)
	}
	observeSearch(s.logger, "permissions", start, total, len(items))
	return &model.PermissionList{Permissions: items, Total: total}, nil
}

// Create создаёт право.
func (s *PermissionService) Create(ctx context.Context, in model.PermissionInput) (*model.Permission, error) {
	p := fromInput(in)
	p.ID = uuid.NewString()
	p.Visible = true

	if p.ParentID != nil {
		if _, err := s.permissions.GetByID(ctx, *p.ParentID); err != nil {
			return nil, notFound(err)
		}
	}
	if err := s.permissions.Create(ctx, p); err != nil {
		return nil, conflict(err)
	}
	s.logger.Info("Право создано", slog.String("permission_id", p.ID),
		slog.String("action", p.Action), slog.String("resource", p.Resource))
	return p, nil
}

// Update изменяет право. Родитель не может быть самим правом или его потомком.
func (s *PermissionService) Update(ctx context.Context, in model.PermissionInput) (*model.Permission, error) {
	current, err := s.permissions.GetByID(ctx, in.ID)
	if err != nil {
		return nil, notFound(err)
	}

	p := fromInput(in)
	p.Visible = current.Visible
	p.Status = current.Status
	p.CreatedAt = current.CreatedAt

	if p.ParentID != nil {
		if err := s.checkParent(ctx, p.ID, *p.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.permissions.Update(ctx, p); err != nil {
		return nil, conflict(err)
	}
	return p, nil
}

// checkParent идёт вверх от parentID и ищет id.
func (s *PermissionService) checkParent(ctx context.Context, id, parentID string) error {
	all, err := s.permissions.All(ctx)
	if err != nil {
		return err
	}
	parents := make(map[string]*string, len(all))
	for _, p := range all {
		parents[p.ID] = p.ParentID
	}
	if _, ok := parents[parentID]; !ok {
		return ErrNotFound
	}

	for cur, steps := parentID, 0; steps <= len(all); steps++ {
		if cur == id {
			return ErrInvalidParameter
		}
		next := parents[cur]
		if next == nil {
			return nil
		}
		cur = *next
	}
	return ErrInvalidParameter
}

// Delete удаляет право.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	if err := s.permissions.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("Право удалено", slog.String("permission_id", id))
	return nil
}

// Detail возвращает право по id.
func (s *PermissionService) Detail(ctx context.Context, id string) (*model.Permission, error) {
	p, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Search ищет права по подстроке имени, без пагинации.
func (s *PermissionService) Search(ctx context.Context, keyword string) ([]model.Permission, error) {
	return s.filter(ctx, repository.PermissionSearchParams{ListParams: repository.ListParams{Search: keyword}})
}

// ByAction — все права с указанным action.
func (s *PermissionService) ByAction(ctx context.Context, action string) ([]model.Permission, error) {
	return s.filter(ctx, repository.PermissionSearchParams{Action: action})
}

// ByResource — все права над указанным resource.
func (s *PermissionService) ByResource(ctx context.Context, resource string) ([]model.Permission, error) {
	return s.filter(ctx, repository.PermissionSearchParams{Resource: resource})
}

func (s *PermissionService) filter(ctx context.Context, params repository.PermissionSearchParams) ([]model.Permission, error) {
	params.Limit = -1
	params.SortBy = "sort"
	params.SortOrder = "asc"
	items, _, err := s.permissions.Search(ctx, params)
	return items, err
}

// Actions — различные action.
func (s *PermissionService) Actions(ctx context.Context) ([]string, error) {
	return s.permissions.Actions(ctx)
}

// Resources — различные resource.
func (s *PermissionService) Resources(ctx context.Context) ([]string, error) {
	return s.permissions.Resources(ctx)
}

// Tree возвращает все права деревом.
func (s *PermissionService) Tree(ctx context.Context) ([]*model.Permission, error) {
	all, err := s.permissions.All(ctx)
	if err != nil {
		return nil, err
	}
	return BuildPermissionTree(all), nil
}

// BuildPermissionTree собирает дерево по ParentID с сохранением порядка.
// Право с отсутствующим родителем становится корнем. Level — глубина от 0.
func BuildPermissionTree(items []model.Permission) []*model.Permission {
	nodes := make(map[string]*model.Permission, len(items))
	for i := range items {
		p := items[i]
		p.Children = nil
		nodes[p.ID] = &p
	}

	roots := []*model.Permission{}
	for i := range items {
		node := nodes[items[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var setLevel func(list []*model.Permission, level int)
	setLevel = func(list []*model.Permission, level int) {
		for _, p := range list {
			p.Level = level
			setLevel(p.Children, level+1)
		}
	}
	setLevel(roots, 0)
	return roots
}

func fromInput(in model.PermissionInput) *model.Permission {
	return &model.Permission{
		ID:          in.ID,
		Name:        in.Name,
		Type:        in.Type,
		Action:      in.Action,
		Resource:    in.Resource,
		ParentID:    in.ParentID,
		Path:        in.Path,
		Icon:        in.Icon,
		Sort:        in.Sort,
		Description: in.Description,
	}
}
