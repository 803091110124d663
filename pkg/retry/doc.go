// Package retry wraps photo downloads and destination uploads with optional
// retrying.
//
// The default is a single attempt: a failure propagates immediately and
// aborts the batch. Raising retry.max_attempts enables exponential backoff
// for transient errors only (network, 429, 5xx). Provider errors such as an
// invalid token are never retried.
//
//	cfg := retry.FromSettings(appCfg.Retry, log)
//	data, err := retry.DoWithResult(ctx, func() ([]byte, error) {
//		return client.DownloadPhoto(ctx, url)
//	}, cfg)
package retry
