package usecase

import (
	"context"
	"net/http"

	"bierz/internal/domain/model"
	"bierz/internal/domain/pricing"
	repo "bierz/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 明細と機材選択は独立して永続化し、金額はすべて読み出し時に再計算します。
type CartUsecase struct {
	cartRepo      repo.CartRepository
	cartItemRepo  repo.CartItemRepository
	cartEquipRepo repo.CartEquipmentRepository
	equipmentRepo repo.EquipmentRepository
	productRepo   repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	cartEquipRepo repo.CartEquipmentRepository,
	equipmentRepo repo.EquipmentRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:      cartRepo,
		cartItemRepo:  cartItemRepo,
		cartEquipRepo: cartEquipRepo,
		equipmentRepo: equipmentRepo,
		productRepo:   productRepo,
	}
}

// price は追加時点のスナップショットを返す。
type CartItemResponse struct {
	ProductID    int64      `json:"product_id"`
	ProductName  string     `json:"product_name"`
	ProductImage string     `json:"product_image"`
	Price        int64      `json:"price"`
	Unit         model.Unit `json:"unit"`
	Category     string     `json:"category"`
	Size         string     `json:"size"`
	Quantity     int64      `json:"quantity"`
}

type EquipmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CartResponse はカートの全体像。金額・判定はすべて導出値。
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	Equipment *EquipmentResponse `json:"equipment"`

	// item_count は「商品行の数」。total_quantity は数量の合計。
	ItemCount     int   `json:"item_count"`
	TotalQuantity int64 `json:"total_quantity"`

	ChoppLiters     int64 `json:"chopp_liters"`
	HasFreeDelivery bool  `json:"has_free_delivery"`
	NeedsEquipment  bool  `json:"needs_equipment"`

	Subtotal                 int64 `json:"subtotal"`
	DeliveryFee              int64 `json:"delivery_fee"`
	EquipmentRentalFee       int64 `json:"equipment_rental_fee"`
	EquipmentRentalListPrice int64 `json:"equipment_rental_list_price"`
	FinalTotal               int64 `json:"final_total"`

	// 追加/更新など、操作の結果の通知文
	Message string `json:"message,omitempty"`
}

type AddCartInput struct {
	ProductID int64
	Size      string
	Quantity  int64
}

type UpdateCartItemInput struct {
	ProductID int64
	Size      string
	Quantity  int64
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "")
}

// AddToCart はカートに追加。同一の (product_id, size) は数量加算。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// ACTIVEカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if !p.HasSize(in.Size) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid size")
	}

	// 既存数量を調べる（stockと、新規行のchopp数量ポリシー判定に使う）
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID && it.Size == in.Size {
			existingQty = it.Quantity
			break
		}
	}

	// choppは新規行のみ最低20L・10L刻みを要求。既存行への加算は
	// UIの+/-操作なので任意の刻みを受ける。
	if existingQty == 0 && p.Unit == model.UnitVolume && !pricing.ValidChoppQuantity(in.Quantity) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid chopp quantity")
	}

	newQty := existingQty + in.Quantity
	if newQty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// スナップショットは追加時点の値。以後は商品を再参照しない。
	merged, err := u.cartItemRepo.Upsert(ctx, model.CartItem{
		CartID:               cart.ID,
		ProductID:            p.ID,
		Size:                 in.Size,
		Quantity:             in.Quantity,
		ProductNameSnapshot:  p.Name,
		ProductImageSnapshot: p.Image,
		UnitPriceSnapshot:    p.Price,
		Unit:                 p.Unit,
		Category:             p.Category,
	})
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	msg := "item added"
	if merged {
		msg = "quantity updated"
	}

	return u.buildCartResponse(ctx, cart.ID, msg)
}

// 数量変更。0以下は削除に委譲する。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if in.Quantity <= 0 {
		return u.RemoveItem(ctx, userID, in.ProductID, in.Size)
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 数量はそのまま上書きする。刻みの制御は呼び出し側（+/-ボタン）の責務。
	err = u.cartItemRepo.UpdateQuantity(ctx, cart.ID, in.ProductID, in.Size, in.Quantity)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "")
}

// 明細削除。(product_id, size) 完全一致の行だけ消す。無くてもエラーにしない。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64, size string) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.Delete(ctx, cart.ID, productID, size); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "item removed")
}

// カートを空にする。明細と機材選択の両方を消す。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		// もともと空
		return emptyCartResponse(), nil
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.cartEquipRepo.ClearForCart(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "cart cleared")
}

// 機材を選択。選び直しは無条件で置き換え。
func (u *CartUsecase) ChooseEquipment(ctx context.Context, userID int64, equipmentID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if equipmentID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid equipment_id")
	}

	equip, err := u.equipmentRepo.FindByID(ctx, equipmentID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid equipment_id")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// カートが空でも選択は許す
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartEquipRepo.SetForCart(ctx, cart.ID, equip); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "equipment selected: "+equip.Name)
}

// 機材選択を解除。
func (u *CartUsecase) ClearEquipment(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return emptyCartResponse(), nil
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartEquipRepo.ClearForCart(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID, "equipment removed")
}

// 機材の選択肢一覧。
func (u *CartUsecase) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	items, err := u.equipmentRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// cartIDの明細と機材選択をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64, message string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var equipment *EquipmentResponse
	ce, err := u.cartEquipRepo.FindByCartID(ctx, cartID)
	if err == nil {
		equipment = &EquipmentResponse{ID: ce.EquipmentID, Name: ce.NameSnapshot}
	} else if err != repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID:    it.ProductID,
			ProductName:  it.ProductNameSnapshot,
			ProductImage: it.ProductImageSnapshot,
			Price:        it.UnitPriceSnapshot,
			Unit:         it.Unit,
			Category:     it.Category,
			Size:         it.Size,
			Quantity:     it.Quantity,
		})
	}

	return CartResponse{
		Items:     respItems,
		Equipment: equipment,

		ItemCount:     len(items),
		TotalQuantity: pricing.TotalQuantity(items),

		ChoppLiters:     pricing.ChoppLiters(items),
		HasFreeDelivery: pricing.HasFreeDelivery(items),
		NeedsEquipment:  pricing.HasChoppItems(items) && equipment == nil,

		Subtotal:                 pricing.Subtotal(items),
		DeliveryFee:              pricing.DeliveryFee(items),
		EquipmentRentalFee:       pricing.EquipmentRentalFee(items),
		EquipmentRentalListPrice: pricing.EquipmentRentalAmount,
		FinalTotal:               pricing.FinalTotal(items),

		Message: message,
	}, nil
}

func emptyCartResponse() CartResponse {
	return CartResponse{
		Items:                    []CartItemResponse{},
		EquipmentRentalListPrice: pricing.EquipmentRentalAmount,
	}
}
