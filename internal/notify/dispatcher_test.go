package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/config"
)

type recordingTransport struct {
	mu       sync.Mutex
	batches  [][]Message
	err      error
	released chan struct{}
}

func (t *recordingTransport) SendBatch(ctx context.Context, messages []Message) error {
	if t.released != nil {
		<-t.released
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches = append(t.batches, messages)
	return t.err
}

func TestDispatcher_SendsRenderedBatch(t *testing.T) {
	transport := &recordingTransport{}
	d := NewDispatcher(transport, "https://app.example.com/", time.Second)

	d.DispatchInvitations([]Invitation{
		{Email: "a@x.com", ProjectName: "Apollo", ProjectUUID: "p1", InviterName: "Ada", Role: "editor"},
		{Email: "b@x.com", ProjectName: "Apollo", ProjectUUID: "p1", Role: "viewer"},
	})
	require.NoError(t, d.Wait(context.Background()))

	require.Len(t, transport.batches, 1)
	batch := transport.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "a@x.com", batch[0].To)
	assert.Equal(t, "You've been invited to Apollo", batch[0].Subject)
	assert.Contains(t, batch[0].HTML, "Ada invited you")
	assert.Contains(t, batch[0].HTML, "https://app.example.com/projects/p1")
	assert.Contains(t, batch[1].HTML, "You were invited")
}

func TestDispatcher_DoesNotBlockCaller(t *testing.T) {
	transport := &recordingTransport{released: make(chan struct{})}
	d := NewDispatcher(transport, "https://app.example.com", time.Second)

	returned := make(chan struct{})
	go func() {
		d.DispatchInvitations([]Invitation{{Email: "a@x.com", ProjectName: "Apollo", ProjectUUID: "p1"}})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("DispatchInvitations blocked on the transport")
	}

	close(transport.released)
	require.NoError(t, d.Wait(context.Background()))
	assert.Len(t, transport.batches, 1)
}

func TestDispatcher_SwallowsTransportFailure(t *testing.T) {
	transport := &recordingTransport{err: errors.New("smtp down")}
	d := NewDispatcher(transport, "https://app.example.com", time.Second)

	d.DispatchInvitations([]Invitation{{Email: "a@x.com", ProjectName: "Apollo", ProjectUUID: "p1"}})

	assert.NoError(t, d.Wait(context.Background()))
}

func TestDispatcher_NilAndEmptyAreNoops(t *testing.T) {
	var d *Dispatcher
	d.DispatchInvitations([]Invitation{{Email: "a@x.com"}})

	transport := &recordingTransport{}
	d = NewDispatcher(transport, "", time.Second)
	d.DispatchInvitations(nil)
	require.NoError(t, d.Wait(context.Background()))
	assert.Empty(t, transport.batches)
}

func TestResendTransport_PostsBatch(t *testing.T) {
	var received []resendEmail
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := &ResendTransport{
		cfg:      config.EmailConfig{FromEmail: "Projects <p@example.com>", ResendAPIKey: "re_test"},
		client:   server.Client(),
		endpoint: server.URL,
	}

	err := transport.SendBatch(context.Background(), []Message{{To: "a@x.com", Subject: "Hi", HTML: "<p>x</p>"}})

	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, []string{"a@x.com"}, received[0].To)
	assert.Equal(t, "Projects <p@example.com>", received[0].From)
}

func TestResendTransport_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	transport := &ResendTransport{cfg: config.EmailConfig{ResendAPIKey: "re_test"}, client: server.Client(), endpoint: server.URL}

	err := transport.SendBatch(context.Background(), []Message{{To: "a@x.com"}})

	assert.Error(t, err)
}

func TestNewTransport_Selection(t *testing.T) {
	assert.IsType(t, &SMTPTransport{}, NewTransport(config.EmailConfig{SMTPEnabled: true, ResendAPIKey: "re"}))
	assert.IsType(t, &ResendTransport{}, NewTransport(config.EmailConfig{ResendAPIKey: "re"}))
	assert.IsType(t, LogTransport{}, NewTransport(config.EmailConfig{}))
}
