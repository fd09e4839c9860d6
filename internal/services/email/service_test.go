package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recordingTransport) Deliver(_ string, _ []string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, string(raw))
	return nil
}

func newTestService(t *testing.T, tr Transport) Service {
	t.Helper()
	svc, err := NewService(Config{From: "no-reply@iprofit.test", PerSecond: 1000, Burst: 100}, tr, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestAllTemplatesParse(t *testing.T) {
	tpls, err := parseTemplates()
	require.NoError(t, err)
	assert.Len(t, tpls, len(templateDefs))
}

func TestSend_RendersTemplate(t *testing.T) {
	tr := &recordingTransport{}
	svc := newTestService(t, tr)

	err := svc.Send(context.Background(), Message{
		To:       "jane@example.com",
		Template: TemplateDepositRejected,
		Data: map[string]interface{}{
			"Name":      "Jane",
			"Amount":    "500.00",
			"Currency":  "BDT",
			"Reference": "ref-1",
			"Reason":    "<b>blurry receipt</b>",
		},
	})
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)

	raw := tr.sent[0]
	assert.Contains(t, raw, "To: jane@example.com")
	assert.Contains(t, raw, "Subject: Deposit rejected")
	assert.Contains(t, raw, "Hello Jane")
	assert.Contains(t, raw, "500.00 BDT")
	assert.Contains(t, raw, "&lt;b&gt;blurry receipt&lt;/b&gt;")
}

func TestSend_Errors(t *testing.T) {
	t.Run("unknown template", func(t *testing.T) {
		svc := newTestService(t, &recordingTransport{})
		err := svc.Send(context.Background(), Message{To: "a@b.c", Template: "nope"})
		assert.ErrorIs(t, err, ErrUnknownTemplate)
	})

	t.Run("transport failure", func(t *testing.T) {
		svc := newTestService(t, &recordingTransport{err: errors.New("connection refused")})
		err := svc.Send(context.Background(), Message{To: "a@b.c", Template: TemplateKYCApproved})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "connection refused"))
	})
}

func TestEnqueue_DeliveredByWorker(t *testing.T) {
	tr := &recordingTransport{}
	svc, err := NewService(Config{PerSecond: 1000, Burst: 100}, tr, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Enqueue(Message{To: "a@b.c", Template: TemplateNotification,
			Data: map[string]interface{}{"Title": "Hi", "Message": "body"}}))
	}
	svc.Close()

	assert.Len(t, tr.sent, 3)
	assert.ErrorIs(t, svc.Enqueue(Message{To: "a@b.c", Template: TemplateNotification}), ErrClosed)
}

func TestEnqueue_RejectsUnknownTemplate(t *testing.T) {
	svc := newTestService(t, &recordingTransport{})
	assert.ErrorIs(t, svc.Enqueue(Message{To: "a@b.c", Template: "missing"}), ErrUnknownTemplate)
}
