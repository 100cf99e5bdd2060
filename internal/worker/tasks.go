package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"booking-service/pkg/response"
	"booking-service/pkg/sl"
)

const TypeBookingComplete = "booking:complete"

// completion tasks stay around a day so a re-issued token dedups against them
const taskRetention = 24 * time.Hour

type CompletionPayload struct {
	BookingID string `json:"booking_id"`
}

func NewCompletionTask(bookingID string, at time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(CompletionPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeBookingComplete, b)
	opts := []asynq.Option{
		asynq.TaskID(completionTaskID(bookingID)),
		asynq.ProcessAt(at),
		asynq.Retention(taskRetention),
	}

	return task, opts, nil
}

func completionTaskID(bookingID string) string {
	return "complete:" + bookingID
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues one durable completion task per booking.
type Scheduler struct {
	client enqueuer
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

func (s *Scheduler) ScheduleCompletion(ctx context.Context, bookingID string, at time.Time) error {
	const op = "worker.Scheduler.ScheduleCompletion"

	task, opts, err := NewCompletionTask(bookingID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type BookingCompleter interface {
	CompleteBooking(ctx context.Context, bookingID string) (bool, error)
}

// NewCompletionHandler marks the task's booking completed. An early delivery
// is returned as an error so asynq retries it later.
func NewCompletionHandler(log *slog.Logger, completer BookingCompleter) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		const op = "worker.CompletionHandler"

		var p CompletionPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("%s: invalid payload: %v: %w", op, err, asynq.SkipRetry)
		}

		done, err := completer.CompleteBooking(ctx, p.BookingID)
		if err != nil {
			if errors.Is(err, response.ErrTooEarly) {
				return fmt.Errorf("%s: %w", op, err)
			}
			log.Error("failed to complete booking",
				slog.String("op", op),
				slog.String("booking_id", p.BookingID),
				sl.Err(err),
			)
			return fmt.Errorf("%s: %w", op, err)
		}

		log.Debug("completion task handled",
			slog.String("booking_id", p.BookingID),
			slog.Bool("completed", done),
		)
		return nil
	}
}

// NewServeMux routes every task type this service consumes.
func NewServeMux(log *slog.Logger, completer BookingCompleter) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeBookingComplete, NewCompletionHandler(log, completer))
	return mux
}
