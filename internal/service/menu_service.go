package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/metrics"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	pkglogger "github.com/haierkeys/menu-tree-service/pkg/logger"
	"github.com/haierkeys/menu-tree-service/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidMenuID 菜单机器名是否合法
func ValidMenuID(id string) bool {
	return util.IsValidMenuName(id)
}

// MenuService 菜单业务服务接口
type MenuService interface {
	CreateMenu(ctx context.Context, menu *domain.Menu) (*domain.Menu, error)
	UpdateMenu(ctx context.Context, id, label, description string) (*domain.Menu, error)
	GetMenu(ctx context.Context, id string) (*domain.MenuSummary, error)
	// ListMenus 按标题（不区分大小写）与机器名排序分页，返回当前页与总数
	ListMenus(ctx context.Context, page, pageSize int) ([]*domain.MenuSummary, int, error)
	// DeleteMenu 删除菜单及其全部自定义链接，返回删除的链接数
	DeleteMenu(ctx context.Context, id string) (int64, error)
	EnsureSystemMenus(ctx context.Context) error
}

type menuService struct {
	menuRepo domain.MenuRepository
	linkRepo domain.MenuLinkRepository
	guard    *Guard
	config   *ServiceConfig
	logger   *zap.Logger
}

// NewMenuService 创建 MenuService 实例
func NewMenuService(menuRepo domain.MenuRepository, linkRepo domain.MenuLinkRepository, guard *Guard, config *ServiceConfig, logger *zap.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		linkRepo: linkRepo,
		guard:    guard,
		config:   config,
		logger:   logger,
	}
}

func (s *menuService) CreateMenu(ctx context.Context, menu *domain.Menu) (*domain.Menu, error) {
	m := &domain.Menu{
		ID:          strings.TrimSpace(menu.ID),
		Label:       strings.TrimSpace(menu.Label),
		Description: strings.TrimSpace(menu.Description),
	}
	if !ValidMenuID(m.ID) {
		return nil, code.ErrorMenuNameInvalid.WithDetails(m.ID)
	}
	if m.Label == "" {
		return nil, code.ErrorMenuLabelEmpty
	}

	err := s.guard.Structural(ctx, []string{m.ID}, func(ctx context.Context) error {
		_, err := s.menuRepo.Get(ctx, m.ID)
		if err == nil {
			return code.ErrorMenuExists.WithDetails(m.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dbError(err)
		}
		return dbError(s.menuRepo.Create(ctx, m))
	})
	metrics.Mutations.WithLabelValues("menu_create", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu created", zap.String(pkglogger.FieldMenu, m.ID))
	return m, nil
}

func (s *menuService) UpdateMenu(ctx context.Context, id, label, description string) (*domain.Menu, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, code.ErrorMenuLabelEmpty
	}

	var out *domain.Menu
	err := s.guard.Structural(ctx, []string{id}, func(ctx context.Context) error {
		m, err := s.menuRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorMenuNotFound, id)
		}
		m.Label = label
		m.Description = strings.TrimSpace(description)
		if err := s.menuRepo.Update(ctx, m); err != nil {
			return notFound(err, code.ErrorMenuNotFound, id)
		}
		out = m
		return nil
	})
	metrics.Mutations.WithLabelValues("menu_update", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *menuService) summarize(ctx context.Context, m *domain.Menu) (*domain.MenuSummary, error) {
	id := m.ID
	n, err := s.linkRepo.Count(ctx, &id)
	if err != nil {
		return nil, dbError(err)
	}
	pending, err := s.linkRepo.CountPending(ctx, id)
	if err != nil {
		return nil, dbError(err)
	}
	return &domain.MenuSummary{Menu: *m, LinkCount: n, PendingCount: pending}, nil
}

func (s *menuService) GetMenu(ctx context.Context, id string) (*domain.MenuSummary, error) {
	m, err := s.menuRepo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, code.ErrorMenuNotFound, id)
	}
	return s.summarize(ctx, m)
}

func (s *menuService) ListMenus(ctx context.Context, page, pageSize int) ([]*domain.MenuSummary, int, error) {
	menus, err := s.menuRepo.List(ctx)
	if err != nil {
		return nil, 0, dbError(err)
	}
	sort.SliceStable(menus, func(i, j int) bool {
		a, b := strings.ToLower(menus[i].Label), strings.ToLower(menus[j].Label)
		if a != b {
			return a < b
		}
		return menus[i].ID < menus[j].ID
	})

	if pageSize <= 0 {
		pageSize = s.config.DefaultPageSize
	}
	if s.config.MaxPageSize > 0 && pageSize > s.config.MaxPageSize {
		pageSize = s.config.MaxPageSize
	}
	if pageSize <= 0 {
		pageSize = len(menus)
	}
	if page <= 0 {
		page = 1
	}

	total := len(menus)
	start := (page - 1) * pageSize
	if start >= total {
		return []*domain.MenuSummary{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]*domain.MenuSummary, 0, end-start)
	for _, m := range menus[start:end] {
		summary, err := s.summarize(ctx, m)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, summary)
	}
	return out, total, nil
}

func (s *menuService) DeleteMenu(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := s.guard.Structural(ctx, []string{id}, func(ctx context.Context) error {
		m, err := s.menuRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorMenuNotFound, id)
		}
		if m.Locked {
			return code.ErrorMenuLocked.WithDetails(id)
		}
		links, err := s.linkRepo.ListByMenu(ctx, id)
		if err != nil {
			return dbError(err)
		}
		for _, l := range links {
			if l.IsPlugin() {
				return code.ErrorMenuLocked.WithDetails("menu " + id + " holds the module link " + l.ID)
			}
		}
		if deleted, err = s.linkRepo.DeleteByMenu(ctx, id); err != nil {
			return dbError(err)
		}
		return notFound(s.menuRepo.Delete(ctx, id), code.ErrorMenuNotFound, id)
	})
	metrics.Mutations.WithLabelValues("menu_delete", metrics.Result(err)).Inc()
	if err != nil {
		return 0, err
	}

	s.logger.Info("menu deleted",
		zap.String(pkglogger.FieldMenu, id),
		zap.Int64(pkglogger.FieldCount, deleted))
	return deleted, nil
}

func (s *menuService) EnsureSystemMenus(ctx context.Context) error {
	for _, sm := range s.config.SystemMenus {
		if !ValidMenuID(sm.ID) {
			return code.ErrorMenuNameInvalid.WithDetails(sm.ID)
		}
		m := sm
		m.Locked = true
		if m.Label == "" {
			m.Label = m.ID
		}
		err := s.guard.Structural(ctx, []string{m.ID}, func(ctx context.Context) error {
			_, err := s.menuRepo.Get(ctx, m.ID)
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dbError(err)
			}
			s.logger.Info("system menu created", zap.String(pkglogger.FieldMenu, m.ID))
			return dbError(s.menuRepo.Create(ctx, &m))
		})
		if err != nil {
			return err
		}
	}
	return nil
}
