package model

import "github.com/shopspring/decimal"

// PriceScale 全系統金額統一保留兩位小數
const PriceScale int32 = 2

// RoundPrice 將金額正規化為兩位小數, 採 half-up (遠離零) 進位
func RoundPrice(d decimal.Decimal) decimal.Decimal {
	return d.Round(PriceScale)
}

// LineTotal 單價 * 數量, 單價與結果皆四捨五入到兩位小數
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return RoundPrice(RoundPrice(unitPrice).Mul(decimal.NewFromInt(int64(quantity))))
}
