package usecase_test

import (
	"context"
	"strings"
	"testing"

	"bierz/internal/domain/model"
	repo "bierz/internal/repository"
	"bierz/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProdProductRepoMock) SoftDelete(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type ProdInventoryRepoMock struct{ mock.Mock }

func (m *ProdInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *ProdInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProdInventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

type ProdAuditRepoMock struct{ mock.Mock }

func (m *ProdAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *ProdAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in ProductUsecase tests")
}

func assertProdErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func validAdminProductInput() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Name:     "Chopp IPA",
		Category: "chopp",
		Price:    22,
		Unit:     "volume",
		Sizes:    []string{"30L", "50L"},
		Stock:    200,
		IsActive: true,
	}
}

// =====================
// Public: List / Detail
// =====================

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertProdErrContains(t, err, "invalid page")
}

func TestProductUsecase_ListPublicProducts_InvalidLimit(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertProdErrContains(t, err, "invalid limit")
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	in := usecase.ListProductsInput{Page: 1, Limit: 20, Q: "pilsen", Category: "chopp", Sort: "new"}
	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "pilsen", Category: "chopp", Sort: "new"}

	items := []model.Product{
		{ID: 1, Name: "Chopp Pilsen", Category: "chopp", IsActive: true},
	}
	pRepo.On("ListPublic", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListPublicProducts(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Len(t, out.Items, 1)
}

func TestProductUsecase_GetProductDetail_InactiveIs404(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Product{ID: 5, IsActive: false}, nil)

	_, err := uc.GetProductDetail(ctx, 5)
	assertProdErrContains(t, err, "not found")
}

// =====================
// Admin: Create / Update / Inventory
// =====================

func TestProductUsecase_AdminCreateProduct_InvalidUnit(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	in := validAdminProductInput()
	in.Unit = "liters"
	_, err := uc.AdminCreateProduct(context.Background(), 1, in)
	assertProdErrContains(t, err, "invalid unit")
}

func TestProductUsecase_AdminCreateProduct_SizesRequired(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	in := validAdminProductInput()
	in.Sizes = nil
	_, err := uc.AdminCreateProduct(context.Background(), 1, in)
	assertProdErrContains(t, err, "sizes required")
}

func TestProductUsecase_AdminCreateProduct_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	audit := new(ProdAuditRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdInventoryRepoMock), audit)

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Chopp IPA" && p.Unit == model.UnitVolume && len(p.Sizes) == 2
	})).Return(model.Product{ID: 42, Name: "Chopp IPA"}, nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct && l.ResourceID == 42
	})).Return(nil)

	id, err := uc.AdminCreateProduct(ctx, 1, validAdminProductInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	audit.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_WritesAdjustmentAndAudit(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	inv := new(ProdInventoryRepoMock)
	audit := new(ProdAuditRepoMock)
	uc := usecase.NewProductUsecase(pRepo, inv, audit)

	pRepo.On("FindByID", mock.Anything, int64(42)).Return(model.Product{ID: 42, Stock: 100}, nil)
	inv.On("SetStock", mock.Anything, int64(42), int64(70)).Return(nil)
	inv.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 42 && a.Delta == -30 && a.Reason == "damaged keg"
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			strings.Contains(l.BeforeJSON, "100") && strings.Contains(l.AfterJSON, "70")
	})).Return(nil)

	err := uc.AdminUpdateInventory(ctx, 1, 42, 70, "damaged keg")
	assert.NoError(t, err)
	inv.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_ReasonRequired(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdInventoryRepoMock), new(ProdAuditRepoMock))

	err := uc.AdminUpdateInventory(context.Background(), 1, 42, 70, "  ")
	assertProdErrContains(t, err, "reason required")
}
