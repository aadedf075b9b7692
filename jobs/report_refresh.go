package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	// TaskDailyReportRefresh recomputes the daily sales rollup and
	// drops cached report keys so the next read sees fresh numbers.
	TaskDailyReportRefresh = "reports:daily_refresh"
)

// DailyReportRefreshPayload names the calendar day to refresh.
type DailyReportRefreshPayload struct {
	Day string `json:"day"`
}

// NewDailyReportRefreshTask constructs an Asynq task for a report
// refresh. An empty day means the day the task runs.
func NewDailyReportRefreshTask(day string) (*asynq.Task, error) {
	body, err := json.Marshal(DailyReportRefreshPayload{Day: day})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyReportRefresh, body, asynq.Queue(QueueDefault)), nil
}

// DailyReportRefreshJob rolls up mirrored sales for one day.
type DailyReportRefreshJob struct {
	pool   *pgxpool.Pool
	redis  *redis.Client
	logger *slog.Logger
}

// NewDailyReportRefreshJob constructs the job. redis may be nil.
func NewDailyReportRefreshJob(pool *pgxpool.Pool, redisClient *redis.Client, logger *slog.Logger) *DailyReportRefreshJob {
	return &DailyReportRefreshJob{pool: pool, redis: redisClient, logger: logger}
}

const dailyRollupSQL = `
INSERT INTO daily_sales_rollup (day, transactions, revenue, tax)
SELECT $1::date, COUNT(*), COALESCE(SUM(total), 0), COALESCE(SUM(tax), 0)
FROM sales
WHERE sold_at >= $1::date AND sold_at < $1::date + INTERVAL '1 day'
ON CONFLICT (day) DO UPDATE SET
	transactions = EXCLUDED.transactions,
	revenue = EXCLUDED.revenue,
	tax = EXCLUDED.tax`

// Handle processes TaskDailyReportRefresh tasks.
func (j *DailyReportRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DailyReportRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	day := payload.Day
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := j.pool.Exec(ctx, dailyRollupSQL, day); err != nil {
		return err
	}
	if j.redis != nil {
		keys, err := j.redis.Keys(ctx, "reports:*").Result()
		if err == nil && len(keys) > 0 {
			if err := j.redis.Del(ctx, keys...).Err(); err != nil {
				j.logger.Warn("drop report cache", slog.Any("error", err))
			}
		}
	}
	j.logger.Info("daily report refreshed", slog.String("day", day))
	return nil
}
