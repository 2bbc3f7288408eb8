package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"conti/internal/core"
	"conti/internal/storage"
)

// CategoryService manages categories and subcategories. Defaults are
// visible to everyone and immutable; user categories are visible to the
// owner and the owner's partner but only the owner may change them.
type CategoryService struct {
	store    *storage.SQLiteRepository
	partners *PartnerService
	now      clock
}

func NewCategoryService(store *storage.SQLiteRepository, partners *PartnerService) *CategoryService {
	return &CategoryService{store: store, partners: partners, now: utcNow}
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, ids)
}

// ListSubcategories returns subcategories of every visible category, or of
// categoryID alone when set.
func (s *CategoryService) ListSubcategories(ctx context.Context, userID, categoryID string) ([]core.Subcategory, error) {
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListSubcategories(ctx, ids, categoryID)
}

// Visible returns the category when userID may use it.
func (s *CategoryService) Visible(ctx context.Context, userID, id string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsDefault() || c.UserID == userID {
		return c, nil
	}
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return core.Category{}, err
	}
	if !slices.Contains(ids, c.UserID) {
		return core.Category{}, fmt.Errorf("category: %w", core.ErrNotFound)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	now := s.now()
	c := core.Category{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category created", "user_id", userID, "category_id", c.ID)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.owned(ctx, userID, id, "edit")
	if err != nil {
		return core.Category{}, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Icon = in.Icon
	c.Color = in.Color
	c.UpdatedAt = s.now()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// Delete removes an unused category together with its subcategories.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id, "delete"); err != nil {
		return err
	}
	n, err := s.store.CountExpensesByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category is used by %d expenses: %w", n, core.ErrConflict)
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "user_id", userID, "category_id", id)
	return nil
}

func (s *CategoryService) CreateSubcategory(ctx context.Context, userID string, in core.SubcategoryInput) (core.Subcategory, error) {
	if err := in.Validate(); err != nil {
		return core.Subcategory{}, err
	}
	if _, err := s.owned(ctx, userID, in.CategoryID, "edit"); err != nil {
		return core.Subcategory{}, err
	}
	now := s.now()
	sc := core.Subcategory{
		ID:         newID(),
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
		Icon:       in.Icon,
		Color:      in.Color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateSubcategory(ctx, sc); err != nil {
		return core.Subcategory{}, err
	}
	return sc, nil
}

func (s *CategoryService) UpdateSubcategory(ctx context.Context, userID, id string, in core.SubcategoryInput) (core.Subcategory, error) {
	if err := in.Validate(); err != nil {
		return core.Subcategory{}, err
	}
	sc, err := s.ownedSubcategory(ctx, userID, id, "edit")
	if err != nil {
		return core.Subcategory{}, err
	}
	if in.CategoryID != sc.CategoryID {
		if _, err := s.owned(ctx, userID, in.CategoryID, "edit"); err != nil {
			return core.Subcategory{}, err
		}
	}
	sc.CategoryID = in.CategoryID
	sc.Name = strings.TrimSpace(in.Name)
	sc.Icon = in.Icon
	sc.Color = in.Color
	sc.UpdatedAt = s.now()
	if err := s.store.UpdateSubcategory(ctx, sc); err != nil {
		return core.Subcategory{}, err
	}
	return sc, nil
}

func (s *CategoryService) DeleteSubcategory(ctx context.Context, userID, id string) error {
	if _, err := s.ownedSubcategory(ctx, userID, id, "delete"); err != nil {
		return err
	}
	n, err := s.store.CountExpensesBySubcategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("subcategory is used by %d expenses: %w", n, core.ErrConflict)
	}
	return s.store.DeleteSubcategory(ctx, id)
}

func (s *CategoryService) owned(ctx context.Context, userID, id, verb string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.UserID != userID {
		return core.Category{}, fmt.Errorf("you can only %s your own categories: %w", verb, core.ErrForbidden)
	}
	return c, nil
}

func (s *CategoryService) ownedSubcategory(ctx context.Context, userID, id, verb string) (core.Subcategory, error) {
	sc, err := s.store.GetSubcategory(ctx, id)
	if err != nil {
		return core.Subcategory{}, err
	}
	if _, err := s.owned(ctx, userID, sc.CategoryID, verb); err != nil {
		if errors.Is(err, core.ErrForbidden) {
			return core.Subcategory{}, fmt.Errorf("you can only %s your own subcategories: %w", verb, core.ErrForbidden)
		}
		return core.Subcategory{}, err
	}
	return sc, nil
}
