package dto

import (
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
)

// 金額一律以兩位小數字串輸出, 避免 json number 精度問題
type OrderItemDTO struct {
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductBrand string `json:"product_brand"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	TotalPrice   string `json:"total_price"`
}

type OrderDTO struct {
	OrderID       string         `json:"order_id"`
	UserProfileID uint           `json:"user_profile_id"`
	Status        string         `json:"status"`
	TotalPrice    string         `json:"total_price"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []OrderItemDTO `json:"items"`
}

type UpdatePriceRequest struct {
	Price string `json:"price"`
}

type ProductDTO struct {
	ProductID         uint   `json:"product_id"`
	Name              string `json:"name"`
	Brand             string `json:"brand"`
	Price             string `json:"price"`
	AvailableQuantity int    `json:"available_quantity"`
}

type StockDTO struct {
	ProductID         uint `json:"product_id"`
	AvailableQuantity int  `json:"available_quantity"`
}

type InsufficientStockDetail struct {
	ProductID uint `json:"product_id"`
	Available int  `json:"available"`
	Requested int  `json:"requested"`
}

func ToOrderDTO(o *model.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, OrderItemDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductBrand: item.ProductBrand,
			UnitPrice:    item.UnitPrice.StringFixed(model.PriceScale),
			Quantity:     item.Quantity,
			TotalPrice:   item.TotalPrice.StringFixed(model.PriceScale),
		})
	}
	return OrderDTO{
		OrderID:       o.OrderID,
		UserProfileID: o.UserProfileID,
		Status:        string(o.Status),
		TotalPrice:    o.TotalPrice.StringFixed(model.PriceScale),
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}

func ToProductDTO(p *model.Product) ProductDTO {
	return ProductDTO{
		ProductID:         p.ProductID,
		Name:              p.Name,
		Brand:             p.Brand,
		Price:             p.Price.StringFixed(model.PriceScale),
		AvailableQuantity: p.AvailableQuantity,
	}
}
