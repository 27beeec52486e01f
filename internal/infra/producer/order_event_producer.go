package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventTypeOrderPlaced = "OrderPlaced"

//go:generate mockgen -source=order_event_producer.go -destination=mock/mock_order_event_producer.go -package=mock_producer

// MessageWriter *kafka.Writer 滿足此介面, 測試時替換
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderPlacedItem struct {
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderPlacedEvent struct {
	EventType     string            `json:"event_type"`
	OrderID       string            `json:"order_id"`
	UserProfileID uint              `json:"user_profile_id"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Items         []OrderPlacedItem `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OrderEventProducer 訂單成立事件
// key 使用 order id, 同一張訂單的事件落在同一個 partition
type OrderEventProducer struct {
	writer MessageWriter
}

func NewOrderEventProducer(writer MessageWriter) *OrderEventProducer {
	return &OrderEventProducer{writer: writer}
}

// NewKafkaWriter topic 由 writer 決定, 訊息本身不帶 topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func (p *OrderEventProducer) PublishOrderPlaced(ctx context.Context, order *model.Order) error {
	event := OrderPlacedEvent{
		EventType:     EventTypeOrderPlaced,
		OrderID:       order.OrderID,
		UserProfileID: order.UserProfileID,
		TotalPrice:    order.TotalPrice,
		Items:         make([]OrderPlacedItem, 0, len(order.OrderItems)),
		CreatedAt:     order.CreatedAt,
	}
	for _, item := range order.OrderItems {
		event.Items = append(event.Items, OrderPlacedItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
		Time: order.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.OrderID, err)
	}
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
