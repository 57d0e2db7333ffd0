package contactform

import (
	"context"
	"errors"
	"sync"

	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// ErrSubmissionInFlight is returned by Submit while a submission is sending
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Status is the controller state
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Submitter sends a submission to the relay. *Client implements it.
type Submitter interface {
	Submit(ctx context.Context, req *models.SubmissionRequest) (*SubmitResponse, error)
}

// Outcome describes a finished submission attempt
type Outcome struct {
	Status  Status
	Message string
	// ID is the provider id; empty for trapped submissions and failures
	ID string
}

// Controller owns the form and drives idle -> sending -> success|error.
// It is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	form    Form
	status  Status
	message string
	toastID string
	// seq changes on every state change so a late toast is not attached
	// to a newer outcome
	seq uint64

	client  Submitter
	toaster *Toaster
}

// NewController creates a Controller with an initial form. toaster may
// be nil.
func NewController(client Submitter, toaster *Toaster) *Controller {
	c := &Controller{
		form:    NewForm(),
		status:  StatusIdle,
		client:  client,
		toaster: toaster,
	}
	if toaster != nil {
		toaster.OnDismiss(c.toastDismissed)
	}
	return c
}

// Form returns a copy of the current form
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Status returns the current state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Message returns the message of the last outcome while it is displayed
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// UpdateField sets a field. Unknown names are ignored. A finished
// success or error goes back to idle.
func (c *Controller) UpdateField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.form.Set(name, value) {
		return
	}
	if c.status == StatusSuccess || c.status == StatusError {
		c.toIdleLocked()
	}
}

// Submit validates and sends the form. Validation failures never reach
// the network. The returned error is only ErrSubmissionInFlight; every
// other failure is reported in the Outcome.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.status == StatusSending {
		c.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	}

	snapshot := c.form
	if result := Validate(snapshot); !result.Valid {
		outcome := Outcome{Status: StatusError, Message: result.Message}
		seq := c.finishLocked(outcome)
		c.mu.Unlock()
		c.notify(seq, outcome)
		return outcome, nil
	}

	c.status = StatusSending
	c.message = ""
	c.mu.Unlock()

	outcome := c.send(ctx, snapshot)

	c.mu.Lock()
	if outcome.Status == StatusSuccess {
		c.form = NewForm()
	}
	seq := c.finishLocked(outcome)
	c.mu.Unlock()

	c.notify(seq, outcome)
	return outcome, nil
}

func (c *Controller) send(ctx context.Context, form Form) Outcome {
	resp, err := c.client.Submit(ctx, form.Request())
	if err != nil {
		return Outcome{Status: StatusError, Message: MsgNetworkError}
	}

	if !resp.Success() {
		message := resp.Error
		if message == "" {
			message = MsgSendFailed
		}
		return Outcome{Status: StatusError, Message: message}
	}

	outcome := Outcome{Status: StatusSuccess, Message: MsgSent}
	if resp.ID != nil {
		outcome.ID = *resp.ID
	}
	return outcome
}

func (c *Controller) finishLocked(outcome Outcome) uint64 {
	c.status = outcome.Status
	c.message = outcome.Message
	c.toastID = ""
	c.seq++
	return c.seq
}

// notify pushes the outcome's toast. It must be called without c.mu held:
// toaster callbacks may read the controller.
func (c *Controller) notify(seq uint64, outcome Outcome) {
	if c.toaster == nil {
		return
	}
	variant := VariantSuccess
	if outcome.Status == StatusError {
		variant = VariantError
	}
	toast := c.toaster.Push(outcome.Message, variant)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != seq {
		return
	}
	// Dismissed before it could be recorded
	if !c.toaster.visible(toast.ID) {
		c.toIdleLocked()
		return
	}
	c.toastID = toast.ID
}

func (c *Controller) toIdleLocked() {
	c.status = StatusIdle
	c.message = ""
	c.toastID = ""
	c.seq++
}

// toastDismissed returns to idle when the outcome's toast goes away
func (c *Controller) toastDismissed(t Toast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.toastID != "" && t.ID == c.toastID && c.status != StatusSending {
		c.toIdleLocked()
	}
}
