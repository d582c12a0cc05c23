package source

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beerxml/pkg/buildinfo"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/httputil"
	"github.com/matzehuels/beerxml/pkg/observability"
)

const (
	// DefaultTimeout bounds a single fetch, retries included.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the document size. Real BeerXML files are a few
	// hundred kilobytes at most.
	DefaultMaxBytes int64 = 5 << 20
)

// Fetcher reads documents from files, HTTP(S) URLs and S3 buckets.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	// HTTP is the client for http(s) sources. Its own Timeout is not used
	// for the deadline; see Timeout.
	HTTP *http.Client

	// Headers are added to every HTTP request.
	Headers map[string]string

	// Timeout bounds each Fetch call. Zero means no limit beyond ctx.
	Timeout time.Duration

	// MaxBytes rejects larger documents. Zero means DefaultMaxBytes.
	MaxBytes int64

	// Retry controls HTTP retries for transient failures.
	Retry httputil.Policy

	// Logger receives debug output. Nil discards.
	Logger *log.Logger

	s3Once sync.Once
	s3     ObjectGetter
	s3Err  error
	s3Opts []S3Option
}

// NewFetcher creates a Fetcher with the given per-fetch timeout.
// S3 options are applied when the first s3:// source is fetched.
func NewFetcher(timeout time.Duration, s3Opts ...S3Option) *Fetcher {
	return &Fetcher{
		HTTP:    &http.Client{},
		Headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
		Timeout: timeout,
		Retry:   httputil.DefaultPolicy,
		s3Opts:  s3Opts,
	}
}

// WithS3 sets the S3 client explicitly, bypassing AWS config loading.
func (f *Fetcher) WithS3(c ObjectGetter) *Fetcher {
	f.s3Once.Do(func() {})
	f.s3 = c
	return f
}

// FetchOptions overrides the Fetcher defaults for a single call.
// Zero fields keep the Fetcher's settings.
type FetchOptions struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Fetch reads the whole document at loc.
//
// Every failure, including hitting the timeout, is returned as an
// *errors.Error with code SOURCE_UNAVAILABLE.
func (f *Fetcher) Fetch(ctx context.Context, loc Locator) ([]byte, error) {
	return f.FetchWith(ctx, loc, FetchOptions{})
}

// FetchWith is Fetch with per-call overrides.
func (f *Fetcher) FetchWith(ctx context.Context, loc Locator, opts FetchOptions) ([]byte, error) {
	timeout := cmp.Or(opts.Timeout, f.Timeout)
	limit := cmp.Or(opts.MaxBytes, f.MaxBytes, DefaultMaxBytes)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	switch loc.Scheme {
	case SchemeFile:
		data, err = f.fetchFile(loc, limit)
	case SchemeHTTP, SchemeHTTPS:
		data, err = f.fetchHTTP(ctx, loc, limit)
	case SchemeS3:
		data, err = f.fetchS3(ctx, loc, limit)
	default:
		err = fmt.Errorf("unsupported scheme %q", loc.Scheme)
	}
	elapsed := time.Since(start)

	if err != nil && stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		if timeout > 0 {
			err = fmt.Errorf("timed out after %s: %w", timeout, err)
		} else {
			err = fmt.Errorf("timed out: %w", err)
		}
	}
	observability.Fetch().OnFetch(ctx, string(loc.Scheme), len(data), elapsed, err)

	if err != nil {
		f.logger().Debug("fetch failed", "source", loc, "error", err, "duration", elapsed)
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch %s", loc)
	}
	f.logger().Debug("fetched", "source", loc, "bytes", len(data), "duration", elapsed)
	return data, nil
}

func (f *Fetcher) fetchFile(loc Locator, limit int64) ([]byte, error) {
	file, err := os.Open(loc.Value)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readAll(file, limit)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, loc Locator, limit int64) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, f.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.Value, nil)
		if err != nil {
			return err
		}
		for k, v := range f.Headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
		}
		defer resp.Body.Close()

		if err := httputil.CheckStatus(resp.StatusCode); err != nil {
			return err
		}
		data, err = readAll(resp.Body, limit)
		return err
	})
	return data, err
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document larger than %d bytes", limit)
	}
	return data, nil
}

func (f *Fetcher) client() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return http.DefaultClient
}

func (f *Fetcher) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return discard
}

var discard = log.NewWithOptions(io.Discard, log.Options{})
