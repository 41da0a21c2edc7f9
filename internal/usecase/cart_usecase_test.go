package usecase_test

import (
	"context"
	"strings"
	"testing"

	"bierz/internal/domain/model"
	"bierz/internal/domain/pricing"
	repo "bierz/internal/repository"
	"bierz/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartCartRepoMock struct{ mock.Mock }

func (m *CartCartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartCartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartCartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	panic("not used in CartUsecase tests")
}

func (m *CartCartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) Upsert(ctx context.Context, item model.CartItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartID int64, productID int64, size string, qty int64) error {
	args := m.Called(ctx, cartID, productID, size, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) Delete(ctx context.Context, cartID int64, productID int64, size string) error {
	args := m.Called(ctx, cartID, productID, size)
	return args.Error(0)
}

type CartEquipRepoMock struct{ mock.Mock }

func (m *CartEquipRepoMock) FindByCartID(ctx context.Context, cartID int64) (model.CartEquipment, error) {
	args := m.Called(ctx, cartID)
	ce, _ := args.Get(0).(model.CartEquipment)
	return ce, args.Error(1)
}

func (m *CartEquipRepoMock) SetForCart(ctx context.Context, cartID int64, equip model.Equipment) error {
	args := m.Called(ctx, cartID, equip)
	return args.Error(0)
}

func (m *CartEquipRepoMock) ClearForCart(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartEquipmentCatalogMock struct{ mock.Mock }

func (m *CartEquipmentCatalogMock) List(ctx context.Context) ([]model.Equipment, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Equipment)
	return items, args.Error(1)
}

func (m *CartEquipmentCatalogMock) FindByID(ctx context.Context, id int64) (model.Equipment, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(model.Equipment)
	return e, args.Error(1)
}

func (m *CartEquipmentCatalogMock) EnsureExists(ctx context.Context, e model.Equipment) error {
	panic("not used in CartUsecase tests")
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

// =====================
// Helpers
// =====================

type cartMocks struct {
	carts     *CartCartRepoMock
	items     *CartItemRepoMock
	cartEquip *CartEquipRepoMock
	catalog   *CartEquipmentCatalogMock
	products  *CartProductRepoMock
}

func newCartUsecase() (*usecase.CartUsecase, cartMocks) {
	m := cartMocks{
		carts:     new(CartCartRepoMock),
		items:     new(CartItemRepoMock),
		cartEquip: new(CartEquipRepoMock),
		catalog:   new(CartEquipmentCatalogMock),
		products:  new(CartProductRepoMock),
	}
	uc := usecase.NewCartUsecase(m.carts, m.items, m.cartEquip, m.catalog, m.products)
	return uc, m
}

func choppProduct() model.Product {
	return model.Product{
		ID:       10,
		Name:     "Chopp Pilsen",
		Category: "chopp",
		Price:    18,
		Unit:     model.UnitVolume,
		Sizes:    []string{"30L", "50L"},
		Stock:    500,
		IsActive: true,
	}
}

func choppLine(productID int64, size string, qty int64, price int64) model.CartItem {
	return model.CartItem{
		CartID:            1,
		ProductID:         productID,
		Size:              size,
		Quantity:          qty,
		UnitPriceSnapshot: price,
		Unit:              model.UnitVolume,
		Category:          "chopp",
	}
}

func assertCartErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_NewLine(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1, UserID: 7, Status: model.CartStatusActive}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	// 1回目は空、Upsert後は1行
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil).Once()
	m.items.On("Upsert", mock.Anything, mock.MatchedBy(func(it model.CartItem) bool {
		return it.ProductID == p.ID && it.Size == "30L" && it.Quantity == 30 &&
			it.UnitPriceSnapshot == 18 && it.ProductNameSnapshot == "Chopp Pilsen"
	})).Return(false, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(p.ID, "30L", 30, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "30L", Quantity: 30})
	assert.NoError(t, err)
	assert.Equal(t, "item added", out.Message)
	assert.Equal(t, 1, out.ItemCount)
	assert.Equal(t, int64(30), out.TotalQuantity)
	assert.Equal(t, int64(30*18), out.Subtotal)
	// 30Lで配送無料
	assert.True(t, out.HasFreeDelivery)
	assert.Equal(t, int64(0), out.DeliveryFee)
	// 機材未選択なので確定にはまだ足りない
	assert.True(t, out.NeedsEquipment)
	m.items.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_MergesSameProductAndSize(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	existing := choppLine(p.ID, "30L", 30, 18)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{existing}, nil).Once()
	m.items.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(p.ID, "30L", 60, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "30L", Quantity: 30})
	assert.NoError(t, err)
	assert.Equal(t, "quantity updated", out.Message)
	// 行は増えない。数量だけ増える。
	assert.Equal(t, 1, out.ItemCount)
	assert.Equal(t, int64(60), out.TotalQuantity)
}

func TestCartUsecase_AddToCart_DifferentSizeIsSeparateLine(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	existing := choppLine(p.ID, "30L", 30, 18)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{existing}, nil).Once()
	m.items.On("Upsert", mock.Anything, mock.MatchedBy(func(it model.CartItem) bool {
		return it.Size == "50L"
	})).Return(false, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{
		existing,
		choppLine(p.ID, "50L", 50, 18),
	}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "50L", Quantity: 50})
	assert.NoError(t, err)
	assert.Equal(t, "item added", out.Message)
	assert.Equal(t, 2, out.ItemCount)
	assert.Equal(t, int64(80), out.TotalQuantity)
}

func TestCartUsecase_AddToCart_InvalidSize(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "99L", Quantity: 30})
	assertCartErrContains(t, err, "invalid size")
}

func TestCartUsecase_AddToCart_NewChoppLineBelowMinimum(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)

	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "30L", Quantity: 10})
	assertCartErrContains(t, err, "invalid chopp quantity")
}

func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()
	p.Stock = 40

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(p.ID, "30L", 30, 18)}, nil)

	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "30L", Quantity: 20})
	assertCartErrContains(t, err, "stock exceeded")
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	p := choppProduct()
	p.IsActive = false

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := uc.AddToCart(ctx, 7, usecase.AddCartInput{ProductID: p.ID, Size: "30L", Quantity: 30})
	assertCartErrContains(t, err, "invalid")
}

// =====================
// UpdateItem / RemoveItem
// =====================

func TestCartUsecase_UpdateItem_ZeroQuantityRemovesLine(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.items.On("Delete", mock.Anything, int64(1), int64(10), "30L").Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.UpdateItem(ctx, 7, usecase.UpdateCartItemInput{ProductID: 10, Size: "30L", Quantity: 0})
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ItemCount)
	m.items.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(10), "30L")
}

func TestCartUsecase_UpdateItem_OverwritesQuantity(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.items.On("UpdateQuantity", mock.Anything, int64(1), int64(10), "30L", int64(40)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(10, "30L", 40, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.UpdateItem(ctx, 7, usecase.UpdateCartItemInput{ProductID: 10, Size: "30L", Quantity: 40})
	assert.NoError(t, err)
	assert.Equal(t, int64(40), out.TotalQuantity)
}

func TestCartUsecase_UpdateItem_MissingLineIs404(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.items.On("UpdateQuantity", mock.Anything, int64(1), int64(10), "30L", int64(40)).Return(repo.ErrNotFound)

	_, err := uc.UpdateItem(ctx, 7, usecase.UpdateCartItemInput{ProductID: 10, Size: "30L", Quantity: 40})
	assertCartErrContains(t, err, "not found")
}

func TestCartUsecase_RemoveItem_AbsentLineIsNoop(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.items.On("Delete", mock.Anything, int64(1), int64(99), "30L").Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.RemoveItem(ctx, 7, 99, "30L")
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ItemCount)
}

// =====================
// ClearCart / Equipment
// =====================

func TestCartUsecase_ClearCart_RemovesItemsAndEquipment(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.carts.On("Clear", mock.Anything, int64(1)).Return(nil)
	m.cartEquip.On("ClearForCart", mock.Anything, int64(1)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.ClearCart(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, 0, out.ItemCount)
	assert.Nil(t, out.Equipment)
	m.carts.AssertCalled(t, "Clear", mock.Anything, int64(1))
	m.cartEquip.AssertCalled(t, "ClearForCart", mock.Anything, int64(1))
}

func TestCartUsecase_ChooseEquipment_ReplacesSelection(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	equip := model.Equipment{ID: 2, Slug: "homebar", Name: "HomeBar"}

	m.catalog.On("FindByID", mock.Anything, int64(2)).Return(equip, nil)
	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.cartEquip.On("SetForCart", mock.Anything, int64(1), equip).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(10, "30L", 30, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{CartID: 1, EquipmentID: 2, NameSnapshot: "HomeBar"}, nil)

	out, err := uc.ChooseEquipment(ctx, 7, 2)
	assert.NoError(t, err)
	if assert.NotNil(t, out.Equipment) {
		assert.Equal(t, "HomeBar", out.Equipment.Name)
	}
	assert.Contains(t, out.Message, "HomeBar")
	assert.False(t, out.NeedsEquipment)
	// レンタル料は免除のまま
	assert.Equal(t, int64(0), out.EquipmentRentalFee)
	assert.Equal(t, pricing.EquipmentRentalAmount, out.EquipmentRentalListPrice)
}

func TestCartUsecase_ChooseEquipment_UnknownID(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.catalog.On("FindByID", mock.Anything, int64(99)).Return(model.Equipment{}, repo.ErrNotFound)

	_, err := uc.ChooseEquipment(ctx, 7, 99)
	assertCartErrContains(t, err, "invalid equipment_id")
}

func TestCartUsecase_ClearEquipment(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.cartEquip.On("ClearForCart", mock.Anything, int64(1)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(10, "30L", 30, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.ClearEquipment(ctx, 7)
	assert.NoError(t, err)
	assert.Nil(t, out.Equipment)
	assert.True(t, out.NeedsEquipment)
}

// =====================
// GetCart（金額の導出）
// =====================

func TestCartUsecase_GetCart_BelowFreeDeliveryPaysFee(t *testing.T) {
	ctx := context.Background()
	uc, m := newCartUsecase()

	m.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)
	m.items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{choppLine(10, "20L", 20, 18)}, nil)
	m.cartEquip.On("FindByCartID", mock.Anything, int64(1)).Return(model.CartEquipment{}, repo.ErrNotFound)

	out, err := uc.GetCart(ctx, 7)
	assert.NoError(t, err)
	assert.False(t, out.HasFreeDelivery)
	assert.Equal(t, pricing.DeliveryFeeAmount, out.DeliveryFee)
	assert.Equal(t, int64(20*18)+pricing.DeliveryFeeAmount, out.FinalTotal)
}
