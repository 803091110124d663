// Package syncer runs a backup of one VK album.
//
// A run has two phases. Collect lists the album with a single photos.get
// call, loads the ledger (photo_info.json), appends photos whose URL it has
// not seen and writes the ledger back. Upload then copies every fetched photo
// to the destination folder, skipping names that already exist there. The
// ledger is written before any upload so a failed upload never loses it.
//
//	s := syncer.New(cfg, syncer.WithReporter(progress))
//	batch, err := s.Collect(ctx, rc)
//	// ask for the destination token here
//	summary, err := s.Upload(ctx, rc, batch)
package syncer
