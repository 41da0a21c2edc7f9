package validator_test

import (
	"context"
	"testing"

	"bierz/internal/domain/model"
	"bierz/internal/repository"
	"bierz/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in validator tests")
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	panic("not used in validator tests")
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in validator tests")
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	panic("not used in validator tests")
}

func (m *UserRepoMock) ListAdmin(ctx context.Context, q repository.UserListQuery) ([]model.User, int64, error) {
	panic("not used in validator tests")
}

func TestValidateRegister_OK(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, nil)

	v := validator.NewAuthValidator(users)
	err := v.ValidateRegister(context.Background(), "a@example.com", "password123", "Ana")
	assert.NoError(t, err)
}

func TestValidateRegister_NameRequired(t *testing.T) {
	v := validator.NewAuthValidator(new(UserRepoMock))
	err := v.ValidateRegister(context.Background(), "a@example.com", "password123", "  ")
	assert.ErrorIs(t, err, validator.ErrInvalidInput)
}

func TestValidateRegister_ShortPassword(t *testing.T) {
	v := validator.NewAuthValidator(new(UserRepoMock))
	err := v.ValidateRegister(context.Background(), "a@example.com", "short", "Ana")
	assert.ErrorIs(t, err, validator.ErrInvalidInput)
}

func TestValidateRegister_BadEmail(t *testing.T) {
	v := validator.NewAuthValidator(new(UserRepoMock))
	err := v.ValidateRegister(context.Background(), "not-an-email", "password123", "Ana")
	assert.ErrorIs(t, err, validator.ErrInvalidInput)
}

func TestValidateRegister_EmailAlreadyUsed(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{ID: 1}, nil)

	v := validator.NewAuthValidator(users)
	err := v.ValidateRegister(context.Background(), "a@example.com", "password123", "Ana")
	assert.ErrorIs(t, err, validator.ErrEmailAlreadyUsed)
}

func TestValidateRefresh_EmptyToken(t *testing.T) {
	v := validator.NewAuthValidator(new(UserRepoMock))
	err := v.ValidateRefresh(context.Background(), "  ", "ua")
	assert.ErrorIs(t, err, validator.ErrInvalidRefresh)
}
