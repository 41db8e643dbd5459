// Package ingest runs the media ingestion pipeline: type resolution, object
// upload, best-effort classification and record creation, for single files
// and for ZIP archives with per-entry failure isolation.
package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/ashok9315-cmyk/profolia.art/internal/archive"
	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/events"
	"github.com/ashok9315-cmyk/profolia.art/internal/mediatype"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/classifier"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/objectstore"
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

// ObjectStore is the slice of the object store the pipeline needs.
type ObjectStore interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// RecordStore is the slice of the database the pipeline needs.
type RecordStore interface {
	CreateMediaAsset(asset *media.MediaAsset) (*media.MediaAsset, error)
	NextDisplayOrder(profileID string) (int, error)
}

type Service struct {
	store       ObjectStore
	records     RecordStore
	classifier  classifier.Classifier
	publisher   events.Publisher
	workers     int
	maxFileSize int64
}

// NewService wires the pipeline. classifier and publisher may be nil, which
// disables classification and progress events respectively.
func NewService(store ObjectStore, records RecordStore, cls classifier.Classifier, publisher events.Publisher, cfg *config.Media) *Service {
	workers := cfg.UploadWorkers
	if workers < 1 {
		workers = 1
	}

	return &Service{
		store:       store,
		records:     records,
		classifier:  cls,
		publisher:   publisher,
		workers:     workers,
		maxFileSize: cfg.MaxFileSize,
	}
}

// FileUpload is one file handed to the pipeline.
type FileUpload struct {
	FileName    string
	ContentType string
	Description string
	Data        []byte
}

// IngestFile runs a single file through the pipeline and reports the outcome.
// It never returns an error; failures are encoded in the outcome so single
// and batched ingestion share one result model.
func (s *Service) IngestFile(ctx context.Context, profile types.Profile, upload FileUpload) Outcome {
	kind, contentType, err := mediatype.Resolve(upload.FileName, upload.ContentType)
	if err != nil {
		return Failure(upload.FileName, ReasonUnsupportedType, err)
	}
	if s.maxFileSize > 0 && int64(len(upload.Data)) > s.maxFileSize {
		return Failure(upload.FileName, ReasonInvalidEntry, fmt.Errorf("file exceeds %d byte limit", s.maxFileSize))
	}

	// Resolved before the upload so a database outage fails cleanly instead
	// of leaving an orphaned object behind.
	displayOrder, err := s.records.NextDisplayOrder(profile.ID)
	if err != nil {
		return Failure(upload.FileName, ReasonRecordError, err)
	}

	objectKey := objectstore.GenerateKey(profile.ID, upload.FileName)
	url, err := s.store.Put(ctx, objectKey, upload.Data, contentType)
	if err != nil {
		return Failure(upload.FileName, ReasonStorageError, err)
	}

	asset := &media.MediaAsset{
		ProfileID:    profile.ID,
		FileName:     upload.FileName,
		Kind:         kind,
		ObjectKey:    objectKey,
		URL:          url,
		Size:         int64(len(upload.Data)),
		DisplayOrder: displayOrder,
		Metadata: map[string]string{
			media.MetaChecksum: checksum(upload.Data),
		},
	}

	results := s.classify(ctx, profile, []classifier.Item{{
		FileName:    upload.FileName,
		Kind:        kind,
		Description: upload.Description,
	}})
	applyClassification(asset, results, 0, upload.Description)

	created, err := s.records.CreateMediaAsset(asset)
	if err != nil {
		slog.Error("media record write failed after upload",
			slog.String("object_key", objectKey),
			slog.String("error", err.Error()))
		return Failure(upload.FileName, ReasonRecordError, err)
	}

	s.publishAsset(profile.ID, created)
	return Success(created)
}

// IngestArchive ingests every file entry of a ZIP archive. Entries are
// uploaded concurrently but the returned outcomes keep archive order, and a
// failed entry never affects its siblings. Only an unreadable archive itself
// is a fatal error.
func (s *Service) IngestArchive(ctx context.Context, profile types.Profile, data []byte) (BatchResult, error) {
	reader, err := archive.Open(data)
	if err != nil {
		return BatchResult{}, err
	}

	var entries []archive.Entry
	for {
		entry, ok := reader.Next()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return BatchResult{Outcomes: []Outcome{}}, nil
	}

	outcomes := make([]Outcome, len(entries))
	stagedItems := make([]*staged, len(entries))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, entry := range entries {
		g.Go(func() error {
			// Each worker writes only its own index, so no locking is
			// needed and archive order survives the fan-out.
			st, out := s.stageEntry(ctx, profile, entry)
			if st == nil {
				outcomes[i] = out
			}
			stagedItems[i] = st
			return nil
		})
	}
	g.Wait()

	// Collect the staged successes, still in archive order, and classify
	// them as one batch.
	var successIdx []int
	var items []classifier.Item
	for i, st := range stagedItems {
		if st == nil {
			continue
		}
		successIdx = append(successIdx, i)
		items = append(items, classifier.Item{FileName: entries[i].Name, Kind: st.kind})
	}

	results := s.classify(ctx, profile, items)

	base := 0
	if len(successIdx) > 0 {
		base, err = s.records.NextDisplayOrder(profile.ID)
		if err != nil {
			slog.Warn("next display order lookup failed, starting at zero",
				slog.String("profile_id", profile.ID),
				slog.String("error", err.Error()))
			base = 0
		}
	}

	for j, i := range successIdx {
		st := stagedItems[i]
		asset := &media.MediaAsset{
			ProfileID:    profile.ID,
			FileName:     entries[i].Name,
			Kind:         st.kind,
			ObjectKey:    st.objectKey,
			URL:          st.url,
			Size:         st.size,
			DisplayOrder: base + j,
			Metadata: map[string]string{
				media.MetaChecksum: st.checksum,
			},
		}
		applyClassification(asset, results, j, "")

		created, err := s.records.CreateMediaAsset(asset)
		if err != nil {
			slog.Error("media record write failed after upload",
				slog.String("object_key", st.objectKey),
				slog.String("error", err.Error()))
			outcomes[i] = Failure(entries[i].Name, ReasonRecordError, err)
			continue
		}
		outcomes[i] = Success(created)
		s.publishAsset(profile.ID, created)
	}

	result := Aggregate(outcomes)
	if s.publisher != nil {
		s.publisher.PublishBatchCompleted(profile.ID, result.Total, result.Succeeded, result.Failed)
	}
	return result, nil
}

// staged holds what stageEntry learned about one successfully uploaded entry.
// The payload bytes themselves are released as soon as the upload finishes.
type staged struct {
	kind      media.Kind
	objectKey string
	url       string
	size      int64
	checksum  string
}

func (s *Service) stageEntry(ctx context.Context, profile types.Profile, entry archive.Entry) (*staged, Outcome) {
	// Type resolution happens before the payload is touched, so unsupported
	// entries never cost a decompression.
	kind, contentType, err := mediatype.Resolve(entry.Name, "")
	if err != nil {
		return nil, Failure(entry.Name, ReasonUnsupportedType, err)
	}

	// A canceled request stops new work; entries already uploading run to
	// completion in their own workers.
	if err := ctx.Err(); err != nil {
		return nil, Failure(entry.Name, ReasonStorageError, err)
	}

	data, err := entry.Bytes()
	if err != nil {
		return nil, Failure(entry.Name, ReasonInvalidEntry, err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, Failure(entry.Name, ReasonInvalidEntry, fmt.Errorf("entry exceeds %d byte limit", s.maxFileSize))
	}

	objectKey := objectstore.GenerateKey(profile.ID, entry.Name)
	url, err := s.store.Put(ctx, objectKey, data, contentType)
	if err != nil {
		return nil, Failure(entry.Name, ReasonStorageError, err)
	}

	return &staged{
		kind:      kind,
		objectKey: objectKey,
		url:       url,
		size:      int64(len(data)),
		checksum:  checksum(data),
	}, Outcome{}
}

// classify runs one batch through the classifier. Any failure degrades to
// defaults rather than failing the ingestion.
func (s *Service) classify(ctx context.Context, profile types.Profile, items []classifier.Item) []classifier.Result {
	if s.classifier == nil || len(items) == 0 {
		return nil
	}

	results, err := s.classifier.Classify(ctx, items, profile.Profession)
	if err != nil {
		slog.Warn("classification failed, using defaults",
			slog.String("profile_id", profile.ID),
			slog.Int("items", len(items)),
			slog.String("error", err.Error()))
		return nil
	}
	return results
}

// applyClassification fills the asset's category, tags and description from
// the classifier results, falling back to defaults when the result for this
// position is missing or partial.
func applyClassification(asset *media.MediaAsset, results []classifier.Result, idx int, fallbackDescription string) {
	var res classifier.Result
	if idx < len(results) {
		res = results[idx]
	}

	asset.Category = res.Category
	if asset.Category == "" {
		asset.Category = classifier.DefaultCategory
	}

	asset.Tags = res.Tags
	if asset.Tags == nil {
		asset.Tags = []string{}
	}

	description := res.Description
	if description == "" {
		description = fallbackDescription
	}
	if description != "" {
		asset.Metadata[media.MetaDescription] = description
	}
}

func (s *Service) publishAsset(profileID string, asset *media.MediaAsset) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishAssetIngested(profileID, asset)
}

func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
