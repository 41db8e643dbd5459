package media

import "time"

// Kind is the canonical media kind of an uploaded file, independent of the
// exact MIME subtype.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// MediaAsset is the durable record for one successfully ingested file.
// A MediaAsset is only ever created after the payload has been uploaded to
// object storage, so URL and Size always describe a real stored object.
type MediaAsset struct {
	ID           string            `json:"id" db:"id"`
	ProfileID    string            `json:"profile_id" db:"profile_id"`
	FileName     string            `json:"file_name" db:"file_name"`
	Kind         Kind              `json:"kind" db:"kind"`
	ObjectKey    string            `json:"object_key" db:"object_key"`
	URL          string            `json:"url" db:"url"`
	Size         int64             `json:"size" db:"size"`
	Category     string            `json:"category,omitempty" db:"category"`
	Tags         []string          `json:"tags,omitempty" db:"tags"`
	Metadata     map[string]string `json:"metadata,omitempty" db:"metadata"`
	DisplayOrder int               `json:"display_order" db:"display_order"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// Metadata keys written by the ingestion pipeline.
const (
	MetaDescription = "description"
	MetaChecksum    = "checksum"
)

// FailedEntry reports one archive entry the pipeline could not ingest.
type FailedEntry struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// ArchiveUploadResponse is the body returned by the archive upload endpoint.
// The request succeeds at the HTTP level even when individual entries failed;
// callers distinguish partial success by inspecting the counts.
type ArchiveUploadResponse struct {
	Total         int           `json:"total"`
	UploadedCount int           `json:"uploaded_count"`
	FailedCount   int           `json:"failed_count"`
	FailedEntries []FailedEntry `json:"failed_entries"`
	Assets        []MediaAsset  `json:"assets"`
}

// UploadURLRequest asks for a presigned PUT URL for a direct-to-store upload.
type UploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// ReorderRequest carries the full ordered list of the caller's asset IDs.
type ReorderRequest struct {
	AssetIDs []string `json:"asset_ids" validate:"required,min=1,dive,required"`
}
