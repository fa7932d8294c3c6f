package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"SheetServe/internal/models"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("connection refused")
	}
	d.sent = append(d.sent, m...)
	return nil
}

func event() models.UploadEvent {
	return models.UploadEvent{
		Revision:   uuid.MustParse("8d1c4f7e-0b5a-4c8e-9a57-3f0f6c1b2a90"),
		Filename:   "Moodle_datein.xlsx",
		Size:       6144,
		RowCount:   4,
		UploadedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:     models.StatusPending,
	}
}

func TestSend(t *testing.T) {
	d := &fakeDialer{}
	s := &Sender{From: "noreply@sheetserve.local", To: "ops@example.com", dialer: d}

	require.NoError(t, s.Send(event()))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Workbook uploaded: Moodle_datein.xlsx (4 rows)"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "8d1c4f7e-0b5a-4c8e-9a57-3f0f6c1b2a90")
	assert.Contains(t, buf.String(), "2025-03-01 12:00:00 UTC")
}

func TestSendWithRetry(t *testing.T) {
	d := &fakeDialer{failures: 1}
	s := &Sender{From: "a@b", To: "c@d", dialer: d}

	require.NoError(t, s.SendWithRetry(context.Background(), event(), 3))
	assert.Equal(t, 2, d.calls)
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	d := &fakeDialer{failures: 100}
	s := &Sender{From: "a@b", To: "c@d", dialer: d}

	err := s.SendWithRetry(context.Background(), event(), 1)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 2, d.calls)
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	d := &fakeDialer{failures: 100}
	s := &Sender{From: "a@b", To: "c@d", dialer: d}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.SendWithRetry(ctx, event(), 5))
	assert.LessOrEqual(t, d.calls, 1)
}
