package ingest

import "github.com/ashok9315-cmyk/profolia.art/internal/types/media"

// FailureReason is the stable code reported for a failed item.
type FailureReason string

const (
	// ReasonUnsupportedType means the file's type could not be resolved.
	ReasonUnsupportedType FailureReason = "UnsupportedType"
	// ReasonInvalidEntry means the item's payload could not be read or
	// broke a size limit.
	ReasonInvalidEntry FailureReason = "InvalidEntry"
	// ReasonStorageError means the object store rejected the upload.
	ReasonStorageError FailureReason = "StorageError"
	// ReasonRecordError means the database write failed after the payload
	// was already uploaded. The reconcile worker cleans up the orphan.
	ReasonRecordError FailureReason = "RecordError"
)

// Outcome is the result of ingesting one item. Exactly one of Asset or
// Reason is set.
type Outcome struct {
	FileName string
	Asset    *media.MediaAsset
	Reason   FailureReason
	Err      error
}

func Success(asset *media.MediaAsset) Outcome {
	return Outcome{FileName: asset.FileName, Asset: asset}
}

func Failure(fileName string, reason FailureReason, err error) Outcome {
	return Outcome{FileName: fileName, Reason: reason, Err: err}
}

func (o Outcome) Failed() bool {
	return o.Asset == nil
}

// BatchResult is the aggregate of one archive ingestion. Succeeded plus
// Failed always equals Total.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Aggregate counts a batch's outcomes. Outcomes keep archive order.
func Aggregate(outcomes []Outcome) BatchResult {
	result := BatchResult{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Failed() {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result
}

// Response converts the batch into its API shape. Successful assets appear
// in archive order; failed entries carry their reason code.
func (r BatchResult) Response() media.ArchiveUploadResponse {
	resp := media.ArchiveUploadResponse{
		Total:         r.Total,
		UploadedCount: r.Succeeded,
		FailedCount:   r.Failed,
		FailedEntries: []media.FailedEntry{},
		Assets:        []media.MediaAsset{},
	}
	for _, o := range r.Outcomes {
		if o.Failed() {
			resp.FailedEntries = append(resp.FailedEntries, media.FailedEntry{
				FileName: o.FileName,
				Error:    string(o.Reason),
			})
			continue
		}
		resp.Assets = append(resp.Assets, *o.Asset)
	}
	return resp
}
