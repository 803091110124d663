// Package uploader copies fetched photos to the destination backend.
//
// Each photo is checked by remote name first and only downloaded when the
// destination does not have it. WorkerPool runs a batch with a bounded number
// of workers (one by default, which keeps uploads strictly sequential) and
// stops at the first failure.
package uploader
