package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Invitation is sent to an email address added to a project before it has a user account.
type Invitation struct {
	Email       string
	ProjectName string
	ProjectUUID string
	InviterName string
	Role        string
}

// Message is one rendered outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	SendBatch(ctx context.Context, messages []Message) error
}

// Dispatcher sends invitation emails in the background. A send is started
// before the triggering request responds and may finish after it; failures
// are only logged.
type Dispatcher struct {
	transport Transport
	appURL    string
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, appURL string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		appURL:    appURL,
		timeout:   timeout,
	}
}

// DispatchInvitations renders and sends the invitations without blocking the caller.
func (d *Dispatcher) DispatchInvitations(invitations []Invitation) {
	if d == nil || len(invitations) == 0 {
		return
	}

	messages := make([]Message, 0, len(invitations))
	for _, inv := range invitations {
		msg, err := renderInvitation(inv, d.appURL)
		if err != nil {
			log.Printf("Failed to render invitation for %s: %v", inv.Email, err)
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.transport.SendBatch(ctx, messages); err != nil {
			log.Printf("Failed to send %d invitation email(s): %v", len(messages), err)
			return
		}
		log.Printf("Sent %d invitation email(s)", len(messages))
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for invitation emails: %w", ctx.Err())
	}
}
