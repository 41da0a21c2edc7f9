package pricing

import "bierz/internal/domain/model"

// chopp向けプロモーションの固定値。
// 金額はすべてレアル整数。
const (
	// 配送料。choppを含む注文のみ課金。
	DeliveryFeeAmount int64 = 50

	// 配送料が無料になる合計リットル数。
	FreeDeliveryLiters int64 = 30

	// 機材レンタル料。表示用に残す（現在は常時無料キャンペーン）。
	EquipmentRentalAmount int64 = 100

	// choppの最低注文リットル数と刻み。
	MinChoppLiters  int64 = 20
	ChoppStepLiters int64 = 10
)

// レンタル料免除キャンペーン中かどうか。
const equipmentRentalWaived = true

// 明細合計（単価スナップショット × 数量）。保存せず毎回計算する。
func Subtotal(items []model.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.UnitPriceSnapshot * it.Quantity
	}
	return sum
}

// 数量の合計（リットルと個数の混在に注意。表示用）。
func TotalQuantity(items []model.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Quantity
	}
	return sum
}

// カートにリットル売り（chopp）の明細があるか。
func HasChoppItems(items []model.CartItem) bool {
	for _, it := range items {
		if it.Unit == model.UnitVolume {
			return true
		}
	}
	return false
}

// カート全体のchoppリットル数。商品ごとではなく合算で判定する。
func ChoppLiters(items []model.CartItem) int64 {
	var sum int64
	for _, it := range items {
		if it.Unit == model.UnitVolume {
			sum += it.Quantity
		}
	}
	return sum
}

// 合計30L以上で配送無料。
func HasFreeDelivery(items []model.CartItem) bool {
	return ChoppLiters(items) >= FreeDeliveryLiters
}

// 配送料。choppが無ければ0、無料ラインに達していれば0。
func DeliveryFee(items []model.CartItem) int64 {
	if !HasChoppItems(items) {
		return 0
	}
	if HasFreeDelivery(items) {
		return 0
	}
	return DeliveryFeeAmount
}

// 機材レンタル料。choppが無ければ0。
// キャンペーン中は常に0だが、金額はUIの打ち消し表示用に公開している。
func EquipmentRentalFee(items []model.CartItem) int64 {
	if !HasChoppItems(items) {
		return 0
	}
	if equipmentRentalWaived {
		return 0
	}
	return EquipmentRentalAmount
}

// 支払い合計。
func FinalTotal(items []model.CartItem) int64 {
	return Subtotal(items) + DeliveryFee(items) + EquipmentRentalFee(items)
}

// choppの数量ポリシー（最低20L、10L刻み）を満たすか。
func ValidChoppQuantity(qty int64) bool {
	return qty >= MinChoppLiters && qty%ChoppStepLiters == 0
}

// BeerCalculatorの見積もり結果。
type Estimate struct {
	TotalLiters int64 `json:"total_liters"`
	Barrels30L  int64 `json:"barrels_30l"`
	Barrels50L  int64 `json:"barrels_50l"`
}

// 人数×時間×1人あたりml/hから必要リットルと樽本数を見積もる。
func EstimateConsumption(people int64, hours int64, mlPerHour int64) Estimate {
	if people < 0 || hours < 0 || mlPerHour < 0 {
		return Estimate{}
	}

	totalMl := people * hours * mlPerHour
	liters := totalMl / 1000
	if totalMl%1000 >= 500 {
		liters++
	}

	return Estimate{
		TotalLiters: liters,
		Barrels30L:  ceilDiv(liters, 30),
		Barrels50L:  ceilDiv(liters, 50),
	}
}

func ceilDiv(a int64, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
