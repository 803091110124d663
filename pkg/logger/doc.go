// Package logger provides the structured logging interface used across vkbackup.
//
// It wraps zerolog with a small Logger interface so packages can accept a
// logger without importing zerolog, and tests can pass NewTestLogger or
// NewNopLogger instead.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "uploader")
//	log.InfoWithFields("Upload completed", map[string]interface{}{
//	    "file_name": "12_1700000000.jpg",
//	})
//
// Console output goes to stderr. When logging.file is set, entries are also
// appended to that file. Tokens must be passed through MaskToken before they
// reach a log field.
package logger
