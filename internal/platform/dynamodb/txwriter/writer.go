// Package txwriter queues DynamoDB writes and commits them through
// TransactWriteItems, splitting at the service's per-call operation ceiling.
package txwriter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
)

// maxTransactItems is the DynamoDB TransactWriteItems operation ceiling.
const maxTransactItems = 100

// Writer accumulates put and delete operations and commits them in order.
// A single commit of at most maxTransactItems operations is atomic; larger
// batches are split into sequential groups, so atomicity holds per group,
// not across the whole batch. Not safe for concurrent use.
type Writer struct {
	client client.Client
	items  []types.TransactWriteItem
	logger *slog.Logger
}

func New(c client.Client, logger *slog.Logger) *Writer {
	return &Writer{client: c, logger: logger}
}

// Put queues a full-item write.
func (w *Writer) Put(table string, item map[string]types.AttributeValue) *Writer {
	w.items = append(w.items, types.TransactWriteItem{
		Put: &types.Put{TableName: aws.String(table), Item: item},
	})
	return w
}

// Update queues an update expression against a key. Expense rows are
// written whole via Put; this exists for callers that patch attributes in
// place, such as reference-table maintenance.
func (w *Writer) Update(table string, key map[string]types.AttributeValue, updateExpr string, values map[string]types.AttributeValue) *Writer {
	w.items = append(w.items, types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(table),
			Key:                       key,
			UpdateExpression:          aws.String(updateExpr),
			ExpressionAttributeValues: values,
		},
	})
	return w
}

// Delete queues a key delete.
func (w *Writer) Delete(table string, key map[string]types.AttributeValue) *Writer {
	w.items = append(w.items, types.TransactWriteItem{
		Delete: &types.Delete{TableName: aws.String(table), Key: key},
	})
	return w
}

// Len is the number of queued operations.
func (w *Writer) Len() int {
	return len(w.items)
}

// Execute commits the queued operations in queue order and drains the
// queue. With nothing queued it is a no-op. A failed group stops the
// commit; a cancelled transaction is never retried here, since a replay
// could interleave with a concurrent writer's committed state.
func (w *Writer) Execute(ctx context.Context) error {
	queued := w.items
	w.items = nil
	for start := 0; start < len(queued); start += maxTransactItems {
		end := min(start+maxTransactItems, len(queued))
		_, err := w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: queued[start:end],
		})
		if err != nil {
			w.logger.Error("transactional write failed",
				"group", start/maxTransactItems,
				"operations", end-start,
				"error", err)
			return fmt.Errorf("transact write group starting at %d: %w", start, err)
		}
	}
	return nil
}
