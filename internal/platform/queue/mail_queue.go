package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coursehub/internal/platform/idgen"

	"github.com/redis/go-redis/v9"
)

// MailJob is one verification email waiting for delivery.
type MailJob struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Code       string    `json:"code"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// MailQueue is a FIFO list: LPUSH on enqueue, BRPOP on dequeue.
type MailQueue struct {
	rdb  *redis.Client
	name string
}

func NewMailQueue(rdb *redis.Client, name string) *MailQueue {
	return &MailQueue{rdb: rdb, name: name}
}

func (q *MailQueue) Name() string { return q.name }

func (q *MailQueue) SendVerificationCode(ctx context.Context, email, code string) error {
	return q.push(ctx, MailJob{ID: idgen.NewKSUID(), Email: email, Code: code, EnqueuedAt: time.Now()})
}

func (q *MailQueue) Requeue(ctx context.Context, job MailJob) error {
	return q.push(ctx, job)
}

func (q *MailQueue) push(ctx context.Context, job MailJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, b).Err(); err != nil {
		return fmt.Errorf("enqueue mail job on %s: %w", q.name, err)
	}
	return nil
}

// ErrEmpty means Pop timed out without a job.
var ErrEmpty = errors.New("mail queue empty")

func (q *MailQueue) Pop(ctx context.Context, timeout time.Duration) (*MailJob, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return nil, ErrEmpty
	}
	var job MailJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decode mail job: %w", err)
	}
	return &job, nil
}

func (q *MailQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
