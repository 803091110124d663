// Package storage uploads photos to a backup destination.
//
// Every destination implements Backend. The default is Yandex.Disk, reached
// through its REST API with an OAuth token; S3, MinIO and a local directory
// are selected with destination.backend.
//
// Files are addressed as "<folder>/<file_name>". Backends never overwrite:
// callers check Exists first and treat ErrAlreadyExists from Upload as a skip.
//
//	backend, err := storage.New(ctx, cfg.Destination, storage.Options{
//	    Token:   yandexToken,
//	    Timeout: cfg.Download.Timeout,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := backend.EnsureFolder(ctx, cfg.Destination.Folder); err != nil {
//	    return err
//	}
package storage
