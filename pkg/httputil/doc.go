// Package httputil holds the outbound HTTP plumbing used by suggestion
// providers.
//
//   - [Client]: JSON-over-HTTP with default headers and status mapping
//   - [Retry]: exponential backoff for errors marked as [RetryableError]
//
// Transient failures (transport errors, 429 and 5xx responses) come back
// from [Client] already wrapped as retryable, so callers usually combine
// the two:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.PostJSON(ctx, url, req, &resp)
//	})
//
// Non-2xx responses surface as [*StatusError] so providers can map
// service-specific bodies to user-facing messages.
package httputil
