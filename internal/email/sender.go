package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gopkg.in/gomail.v2"

	"SheetServe/internal/models"
)

var noticeTmpl = template.Must(template.New("notice").Parse(`<p>A new workbook was uploaded.</p>
<table>
<tr><td>File</td><td>{{.Filename}}</td></tr>
<tr><td>Rows</td><td>{{.RowCount}}</td></tr>
<tr><td>Size</td><td>{{.Size}} bytes</td></tr>
<tr><td>Revision</td><td>{{.Revision}}</td></tr>
<tr><td>Uploaded</td><td>{{.UploadedAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
</table>
`))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Sender struct {
	From string
	To   string

	dialer dialer
}

func NewSender(host string, port int, user, password, from, to string) *Sender {
	return &Sender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *Sender) message(ev models.UploadEvent) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := noticeTmpl.Execute(&body, ev); err != nil {
		return nil, fmt.Errorf("template execution error: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Workbook uploaded: %s (%d rows)", ev.Filename, ev.RowCount))
	m.SetBody("text/html", body.String())
	return m, nil
}

// Send renders the upload notice and sends it
func (s *Sender) Send(ev models.UploadEvent) error {
	m, err := s.message(ev)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}

// SendWithRetry retries sending with exponential backoff
func (s *Sender) SendWithRetry(
	ctx context.Context,
	ev models.UploadEvent,
	retries int,
) error {

	operation := func() error {
		return s.Send(ev)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(retries, 0))), ctx))
}
