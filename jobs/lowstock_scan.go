package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// TaskLowStockScan flags mirrored products below the threshold.
	TaskLowStockScan = "inventory:lowstock_scan"
)

// LowStockScanPayload carries the scan threshold.
type LowStockScanPayload struct {
	Threshold int `json:"threshold"`
}

// NewLowStockScanTask constructs an Asynq task for a low stock scan.
func NewLowStockScanTask(threshold int) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// LowStockScanJob queries the mirror for products running low.
type LowStockScanJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLowStockScanJob constructs the job.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{pool: pool, logger: logger}
}

const lowStockQuery = `
SELECT id, name, sku, stock
FROM products
WHERE stock < $1
ORDER BY stock ASC`

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Threshold <= 0 {
		payload.Threshold = 10
	}
	rows, err := j.pool.Query(ctx, lowStockQuery, payload.Threshold)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, name, sku string
		var stock int
		if err := rows.Scan(&id, &name, &sku, &stock); err != nil {
			return err
		}
		count++
		j.logger.Warn("low stock",
			slog.String("product_id", id),
			slog.String("name", name),
			slog.String("sku", sku),
			slog.Int("stock", stock),
			slog.Int("threshold", payload.Threshold))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	j.logger.Info("low stock scan complete", slog.Int("flagged", count))
	return nil
}
