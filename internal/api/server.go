package api

import "github.com/RoyceAzure/lab/shop/internal/api/handler"

type Server struct {
	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
	ProductHandler  *handler.ProductHandler
}

func NewServer(
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
) *Server {
	return &Server{
		CheckoutHandler: checkoutHandler,
		OrderHandler:    orderHandler,
		ProductHandler:  productHandler,
	}
}
