// Package httputil provides HTTP utilities for the remote document store.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// Wrap transient failures with [RetryableError] so Retry knows to attempt
// the operation again; any other error returns immediately. The delay
// doubles after each failed attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return handle(resp)
//	})
//
// # Configuration
//
// [RetryWithBackoff] uses the default policy: 3 attempts with 1 second
// initial delay, doubling each retry.
package httputil
