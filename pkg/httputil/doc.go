// Package httputil provides HTTP helpers for fetching remote documents.
//
// # Retry
//
// [Retry] wraps an operation with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] are retried, using exponential
// backoff:
//
//	err := httputil.Retry(ctx, httputil.DefaultPolicy, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Status codes
//
// [CheckStatus] classifies response codes into nil, [ErrNotFound] or
// [ErrNetwork], marking the transient ones retryable.
package httputil
