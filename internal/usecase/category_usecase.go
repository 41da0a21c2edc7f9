package usecase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"bierz/internal/domain/model"
	repo "bierz/internal/repository"
)

// slugは小文字英数とハイフンのみ
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
}

// DI
func NewCategoryUsecase(categoryRepo repo.CategoryRepository, auditRepo repo.AuditLogRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo, auditRepo: auditRepo}
}

type CategoryInput struct {
	Slug string
	Name string
}

func (in CategoryInput) validate() error {
	if !slugPattern.MatchString(in.Slug) {
		return NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	return nil
}

// 公開の一覧。認証不要。
func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	items, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	//slug重複は409
	if _, err := u.categoryRepo.FindBySlug(ctx, in.Slug); err == nil {
		return 0, NewHTTPError(http.StatusConflict, "slug already exists")
	} else if err != repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	c, err := u.categoryRepo.Create(ctx, model.Category{
		Slug:      in.Slug,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.writeCategoryAudit(ctx, adminUserID, model.AuditActionCreateCategory, c.ID, "", c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID int64, categoryID int64, in CategoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	before, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//slugの付け替え先が既に使われていたら409
	if in.Slug != before.Slug {
		if _, err := u.categoryRepo.FindBySlug(ctx, in.Slug); err == nil {
			return NewHTTPError(http.StatusConflict, "slug already exists")
		} else if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	after := model.Category{
		ID:        categoryID,
		Slug:      in.Slug,
		Name:      strings.TrimSpace(in.Name),
		UpdatedAt: time.Now(),
	}
	err = u.categoryRepo.Update(ctx, after)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.writeCategoryAudit(ctx, adminUserID, model.AuditActionUpdateCategory, categoryID, categoryJSON(before), after)
}

func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.categoryRepo.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDeleteCategory,
		ResourceType: model.AuditResourceCategory,
		ResourceID:   categoryID,
		BeforeJSON:   categoryJSON(before),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CategoryUsecase) writeCategoryAudit(ctx context.Context, adminUserID int64, action model.AuditAction, categoryID int64, beforeJSON string, after model.Category) error {
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       action,
		ResourceType: model.AuditResourceCategory,
		ResourceID:   categoryID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    categoryJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func categoryJSON(c model.Category) string {
	return fmt.Sprintf(`{"slug":%q,"name":%q}`, c.Slug, c.Name)
}
