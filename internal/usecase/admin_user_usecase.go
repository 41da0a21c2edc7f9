package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bierz/internal/domain/model"
	repo "bierz/internal/repository"
)

type AdminUserUsecase struct {
	users     repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewAdminUserUsecase(
	users repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, rtRepo: rtRepo, auditRepo: auditRepo}
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) ListUsers(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.ListAdmin(ctx, repo.UserListQuery{Page: page, Limit: limit})
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}

	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 有効/停止の切り替え。停止時は全セッションを落とす。
func (u *AdminUserUsecase) SetUserActive(ctx context.Context, actorAdminUserID int64, targetUserID int64, isActive bool) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	//自分自身の停止は不可
	if actorAdminUserID == targetUserID && !isActive {
		return NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if user.IsActive == isActive {
		// 変化なし
		return nil
	}

	before := user.IsActive
	user.IsActive = isActive
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止したら既存トークンを全部無効化する
	if !isActive {
		if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionSetUserActive,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   fmt.Sprintf(`{"is_active":%t}`, before),
		AfterJSON:    fmt.Sprintf(`{"is_active":%t}`, isActive),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 監査ログ閲覧（管理者のみ）
type AdminAuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAdminAuditUsecase(auditRepo repo.AuditLogRepository) *AdminAuditUsecase {
	return &AdminAuditUsecase{auditRepo: auditRepo}
}

func (u *AdminAuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
