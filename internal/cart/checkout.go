package cart

import (
	"context"
	"crypto/rand"
	"log"
	"strconv"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
)

// Registrar is the slice of the ledger the orchestrator needs.
type Registrar interface {
	Register(ctx context.Context, userID, eventID string, details model.Registration) error
}

// Publisher emits a message after each successfully registered item.  A
// nil Publisher disables messaging; publish failures never affect the
// checkout outcome.
type Publisher interface {
	PublishRegistrationConfirmed(ctx context.Context, ev queue.RegistrationConfirmedEvent) error
}

// FailedItem pairs a cart item with the error that kept it out of the
// ledger.  The error is preserved so callers can tell a capacity refusal
// from a generic failure.
type FailedItem struct {
	Item Item
	Err  error
}

// Result is a checkout outcome: which items registered and which did
// not.  AllFailed/Partial help callers pick between the itemized partial
// message and the generic failure message.
type Result struct {
	Succeeded []Item
	Failed    []FailedItem
}

// OK reports whether every item registered.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// Partial reports whether some but not all items registered.
func (r Result) Partial() bool { return len(r.Succeeded) > 0 && len(r.Failed) > 0 }

// AllFailed reports whether no item registered.
func (r Result) AllFailed() bool { return len(r.Succeeded) == 0 && len(r.Failed) > 0 }

// Orchestrator drains a cart through the ledger one item at a time.
//
// The loop is strictly sequential, never parallel: the failure-accounting
// contract (cart after checkout == exactly the failed items) stays simple
// only when items resolve one by one.  Checkout has no cancel step; a
// failed item simply remains in the cart for retry.
type Orchestrator struct {
	ledger    Registrar
	publisher Publisher
	now       func() time.Time
}

// NewOrchestrator builds an Orchestrator.  publisher may be nil.
func NewOrchestrator(ledger Registrar, publisher Publisher) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewOrchestratorWithClock is NewOrchestrator with a custom clock, used
// by tests to pin payment IDs and dates.
func NewOrchestratorWithClock(ledger Registrar, publisher Publisher, now func() time.Time) *Orchestrator {
	o := NewOrchestrator(ledger, publisher)
	if now != nil {
		o.now = now
	}
	return o
}

// Checkout registers the user for every item in the cart, in order.
// Each item gets a synthesized payment reference.  After the loop the
// cart is reconciled: all succeeded -> cleared; otherwise it retains
// exactly the failed items so the user can retry them.
func (o *Orchestrator) Checkout(ctx context.Context, userID string, c *Cart) (Result, error) {
	if userID == "" {
		return Result{}, ErrNotAuthenticated
	}
	var res Result
	for _, item := range c.Items() {
		details := model.Registration{
			EventID:   item.Event.ID,
			EventName: item.Event.Title,
			EventDate: o.now().Format("2006-01-02"),
			EventTime: "TBD",
			Venue:     "TBD",
			PaymentID: o.newPaymentID(),
			Amount:    item.Event.Price,
			Quantity:  item.Quantity,
		}
		if err := o.ledger.Register(ctx, userID, item.Event.ID, details); err != nil {
			res.Failed = append(res.Failed, FailedItem{Item: item, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, item)
		o.publish(ctx, userID, item, details)
	}

	if res.OK() {
		c.Clear()
	} else {
		failedIDs := make(map[string]bool, len(res.Failed))
		for _, f := range res.Failed {
			failedIDs[f.Item.Event.ID] = true
		}
		c.RetainFailed(failedIDs)
	}
	return res, nil
}

func (o *Orchestrator) publish(ctx context.Context, userID string, item Item, details model.Registration) {
	if o.publisher == nil {
		return
	}
	ev := queue.RegistrationConfirmedEvent{
		UserID:       userID,
		EventID:      item.Event.ID,
		EventTitle:   item.Event.Title,
		Category:     item.Event.Category,
		PaymentID:    details.PaymentID,
		Amount:       details.Amount,
		Quantity:     details.Quantity,
		RegisteredAt: details.RegisteredAt.Format(time.RFC3339),
	}
	if ev.RegisteredAt == "0001-01-01T00:00:00Z" {
		ev.RegisteredAt = o.now().Format(time.RFC3339)
	}
	if err := o.publisher.PublishRegistrationConfirmed(ctx, ev); err != nil {
		log.Printf("checkout: publish registration.confirmed for event %s failed: %v", item.Event.ID, err)
	}
}

// base36 alphabet used for the random payment suffix.
const txnAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newPaymentID synthesizes a payment reference of the form
// TXN<unix-millis><5 random base36 chars>.
func (o *Orchestrator) newPaymentID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-only reference; uniqueness suffers but a
		// checkout must not abort over entropy.
		return "TXN" + strconv.FormatInt(o.now().UnixMilli(), 10)
	}
	for i, b := range buf {
		buf[i] = txnAlphabet[int(b)%len(txnAlphabet)]
	}
	return "TXN" + strconv.FormatInt(o.now().UnixMilli(), 10) + string(buf)
}
