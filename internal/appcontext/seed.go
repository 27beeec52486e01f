package appcontext

import (
	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/memory"
	"github.com/shopspring/decimal"
)

// SeedDemoData 本地以 memory store 啟動時的示範資料
// 使用者 1, 2 的購物車都包含商品 3, 可用來觀察同時結帳時的庫存競爭
func SeedDemoData(store *memory.Store) error {
	products := []model.Product{
		{ProductID: 3, Name: "Ceramic Mug", Brand: "Acme", Price: decimal.RequireFromString("19.99"), AvailableQuantity: 5},
		{ProductID: 7, Name: "Fountain Pen", Brand: "Lamy", Price: decimal.RequireFromString("29.50"), AvailableQuantity: 10},
		{ProductID: 9, Name: "Desk Lamp", Brand: "Oak&Co", Price: decimal.RequireFromString("45.00"), AvailableQuantity: 2},
	}
	for _, p := range products {
		if err := store.PutProduct(p); err != nil {
			return err
		}
	}

	carts := map[uint][]model.CartItem{
		1: {{ProductID: 3, Quantity: 3}, {ProductID: 7, Quantity: 1}},
		2: {{ProductID: 9, Quantity: 1}, {ProductID: 3, Quantity: 3}},
		3: nil,
	}
	for userID, items := range carts {
		cartID := userID
		store.PutCart(model.Cart{CartID: cartID, CartItems: items})
		store.PutUserProfile(model.UserProfile{UserProfileID: userID, UserName: demoUserNames[userID], CartID: &cartID})
	}
	return nil
}

var demoUserNames = map[uint]string{
	1: "alice",
	2: "bob",
	3: "carol",
}
