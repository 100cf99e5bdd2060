package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"booking-service/internal/models"
	"booking-service/pkg/sl"
)

const sendTimeout = 10 * time.Second

// Notifier composes booking mails and relays them off the request path.
// Failures are logged only.
type Notifier struct {
	log    *slog.Logger
	sender EmailSender
	loc    *time.Location
}

func NewNotifier(log *slog.Logger, sender EmailSender, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{log: log, sender: sender, loc: loc}
}

func (n *Notifier) BookingConfirmed(b *models.Booking, to *models.Client, with *models.Professional) {
	if to == nil || to.Email == "" {
		return
	}

	start := b.StartTime.In(n.loc)
	n.dispatch(b.ID, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Your consultation is booked",
		Body: fmt.Sprintf("Your consultation with %s is scheduled for %s at %s (%s).",
			with.Name, start.Format("Mon, Jan 2"), start.Format("15:04"), n.loc.String()),
	})
}

func (n *Notifier) BookingCancelled(b *models.Booking, to *models.Client, refunded bool) {
	if to == nil || to.Email == "" {
		return
	}

	body := fmt.Sprintf("Your consultation on %s was cancelled.", b.StartTime.In(n.loc).Format("Mon, Jan 2 15:04"))
	if refunded {
		body += " The credit has been returned to your balance."
	}

	n.dispatch(b.ID, EmailMessage{
		To:      to.Email,
		ToName:  to.Name,
		Subject: "Your consultation was cancelled",
		Body:    body,
	})
}

func (n *Notifier) dispatch(bookingID string, msg EmailMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.sender.Send(ctx, msg); err != nil {
			n.log.Warn("failed to send booking mail",
				slog.String("booking_id", bookingID),
				sl.Err(err),
			)
		}
	}()
}
