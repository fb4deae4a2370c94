package worker

import (
	"context"
	"testing"

	"github.com/storelane/storelane/internal/config"
	"github.com/storelane/storelane/internal/queue"

	"github.com/hibiken/asynq"
)

func TestNewServiceQueueDisabled(t *testing.T) {
	if _, err := NewService(nil, NewConsumer(nil)); err == nil {
		t.Fatalf("nil config should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: false}, NewConsumer(nil)); err == nil {
		t.Fatalf("disabled queue should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer should fail")
	}
}

func TestHandleOrderStatusEmailInvalidPayload(t *testing.T) {
	c := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte("not-json"))
	if err := c.handleOrderStatusEmail(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should fail")
	}

	task = asynq.NewTask(queue.TaskOrderStatusEmail, []byte(`{"order_id":0}`))
	if err := c.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be dropped, got %v", err)
	}

	if err := c.handleOrderStatusEmail(context.Background(), nil); err != nil {
		t.Fatalf("nil task should be dropped, got %v", err)
	}
}

func TestHandleLowStockAlertInvalidPayload(t *testing.T) {
	c := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskOrderLowStock, []byte("not-json"))
	if err := c.handleLowStockAlert(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should fail")
	}

	task = asynq.NewTask(queue.TaskOrderLowStock, []byte(`{"product_id":0}`))
	if err := c.handleLowStockAlert(context.Background(), task); err != nil {
		t.Fatalf("zero product id should be dropped, got %v", err)
	}
}
