package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeStockDecrement is the task type for post-commit stock decrements.
const TypeStockDecrement = "stock:decrement"

// QueueDefault is the queue all ordering tasks are enqueued on.
const QueueDefault = "default"

// StockDecrementPayload identifies one committed order line whose quantity
// must be subtracted from catalog stock.
type StockDecrementPayload struct {
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// NewStockDecrementTask builds the asynq task for one order line.
func NewStockDecrementTask(orderID, productID uuid.UUID, quantity int) (*asynq.Task, error) {
	payload, err := json.Marshal(StockDecrementPayload{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("tasks: marshal stock decrement payload: %w", err)
	}
	return asynq.NewTask(TypeStockDecrement, payload), nil
}

// Enqueuer schedules ordering tasks on the asynq queue.
type Enqueuer struct {
	Client *asynq.Client
}

// EnqueueStockDecrement queues one stock decrement. Retries are bounded; a
// persistently failing decrement surfaces through worker logs and metrics
// rather than blocking the commit that spawned it.
func (e Enqueuer) EnqueueStockDecrement(ctx context.Context, orderID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	task, err := NewStockDecrementTask(orderID, productID, quantity)
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("tasks: enqueue %s: %w", TypeStockDecrement, err)
	}
	return nil
}
