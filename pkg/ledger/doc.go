// Package ledger keeps photo_info.json, the local list of photos already
// seen, keyed by URL.
//
// A run loads the ledger, merges the freshly fetched records into it and
// persists the result before any upload starts:
//
//	l := ledger.New(cfg.Ledger.Path, log)
//	merged, added := ledger.Merge(l.Load(), fetched)
//	if err := l.Persist(merged); err != nil {
//	    return err
//	}
//
// The ledger only grows. Records are never edited or removed, and no two
// records share a URL.
package ledger
