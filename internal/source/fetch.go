package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"SheetServe/internal/metrics"
)

var errTooManyRedirects = errors.New("too many redirects")

// FetchError reports a remote file that could not be retrieved.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type FetcherOptions struct {
	Timeout      time.Duration
	Retries      int
	MaxRedirects int
	MaxBytes     int64
	Limiter      *rate.Limiter
	Logger       *zap.Logger
}

// Fetcher downloads remote spreadsheets. Redirects are followed up to a fixed
// depth; transport errors and 5xx responses are retried with backoff.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	retries  int
	maxBytes int64
	log      *zap.Logger
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	maxRedirects := opts.MaxRedirects
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		limiter:  opts.Limiter,
		retries:  opts.Retries,
		maxBytes: opts.MaxBytes,
		log:      log,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		data, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		f.log.Warn("remote fetch failed, retrying",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(f.retries, 0))), ctx),
		notify,
	)
	if err != nil {
		metrics.RemoteFetches.WithLabelValues("error").Inc()
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{URL: url, Err: err}
		}
		return nil, err
	}

	metrics.RemoteFetches.WithLabelValues("ok").Inc()
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(&FetchError{URL: url, Err: err})
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) || ctx.Err() != nil {
			return nil, backoff.Permanent(&FetchError{URL: url, Err: err})
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	if resp.StatusCode >= 300 {
		return nil, backoff.Permanent(&FetchError{URL: url, Status: resp.StatusCode})
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, backoff.Permanent(&FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)})
	}

	return data, nil
}
