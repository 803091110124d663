package models

// PhotoRecord is one ledger entry. URL is the unique key; records are never
// modified once written.
type PhotoRecord struct {
	FileName string `json:"file_name"`
	Size     string `json:"size"`
	URL      string `json:"url"`
}

// UploadOutcome is what happened to one photo in the upload phase
type UploadOutcome string

const (
	OutcomeUploaded UploadOutcome = "uploaded"
	OutcomeSkipped  UploadOutcome = "skipped"
	OutcomeFailed   UploadOutcome = "failed"
)

// UploadResult reports a single upload attempt
type UploadResult struct {
	Photo      PhotoRecord
	RemotePath string
	Outcome    UploadOutcome
	Bytes      int
	Err        error
}
