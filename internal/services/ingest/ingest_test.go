package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ashok9315-cmyk/profolia.art/internal/archive"
	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/classifier"
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

type fakeObjectStore struct {
	mu              sync.Mutex
	objects         map[string][]byte
	failContentType string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.failContentType != "" && contentType == f.failContentType {
		return "", fmt.Errorf("bucket rejected %s", contentType)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey] = data
	return "http://store.local/media/" + objectKey, nil
}

type fakeRecords struct {
	assets       []*media.MediaAsset
	next         int
	failFileName string
}

func (f *fakeRecords) CreateMediaAsset(asset *media.MediaAsset) (*media.MediaAsset, error) {
	if f.failFileName != "" && asset.FileName == f.failFileName {
		return nil, fmt.Errorf("insert failed for %s", asset.FileName)
	}
	if asset.ID == "" {
		asset.ID = fmt.Sprintf("asset-%d", len(f.assets)+1)
	}
	f.assets = append(f.assets, asset)
	return asset, nil
}

func (f *fakeRecords) NextDisplayOrder(profileID string) (int, error) {
	return f.next, nil
}

type fakeClassifier struct {
	results  []classifier.Result
	err      error
	gotItems []classifier.Item
	gotHint  string
}

func (f *fakeClassifier) Classify(ctx context.Context, items []classifier.Item, domainHint string) ([]classifier.Result, error) {
	f.gotItems = items
	f.gotHint = domainHint
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type capturePublisher struct {
	assetIDs []string
	batches  [][3]int
}

func (c *capturePublisher) PublishAssetIngested(profileID string, asset *media.MediaAsset) error {
	c.assetIDs = append(c.assetIDs, asset.ID)
	return nil
}

func (c *capturePublisher) PublishBatchCompleted(profileID string, total, succeeded, failed int) error {
	c.batches = append(c.batches, [3]int{total, succeeded, failed})
	return nil
}

func testProfile() types.Profile {
	return types.Profile{ID: "profile-1", Username: "ana", Profession: "Photographer"}
}

func testConfig() *config.Media {
	return &config.Media{MaxFileSize: 1 << 20, UploadWorkers: 2}
}

func buildZip(t *testing.T, names []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if _, err := f.Write([]byte("payload of " + name)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestIngestFileSuccess(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{next: 3}
	cls := &fakeClassifier{results: []classifier.Result{
		{Category: "Portraits", Tags: []string{"studio", "portrait"}, Description: "A studio portrait."},
	}}
	pub := &capturePublisher{}

	svc := NewService(store, records, cls, pub, testConfig())
	outcome := svc.IngestFile(context.Background(), testProfile(), FileUpload{
		FileName:    "shoot.jpg",
		ContentType: "image/jpeg",
		Description: "studio shoot",
		Data:        []byte("fake jpeg bytes"),
	})

	if outcome.Failed() {
		t.Fatalf("outcome failed: %s (%v)", outcome.Reason, outcome.Err)
	}
	asset := outcome.Asset
	if asset.Kind != media.KindImage {
		t.Errorf("kind = %q, want image", asset.Kind)
	}
	if asset.Category != "Portraits" {
		t.Errorf("category = %q, want Portraits", asset.Category)
	}
	if len(asset.Tags) != 2 {
		t.Errorf("tags = %v, want two tags", asset.Tags)
	}
	if asset.DisplayOrder != 3 {
		t.Errorf("display order = %d, want 3", asset.DisplayOrder)
	}
	if !strings.HasPrefix(asset.URL, "http://store.local/media/profiles/profile-1/") {
		t.Errorf("url = %q, want store URL under the profile namespace", asset.URL)
	}
	if asset.Metadata[media.MetaChecksum] == "" {
		t.Error("metadata missing checksum")
	}
	if asset.Metadata[media.MetaDescription] != "A studio portrait." {
		t.Errorf("description = %q", asset.Metadata[media.MetaDescription])
	}
	if cls.gotHint != "Photographer" {
		t.Errorf("classifier hint = %q, want the profile profession", cls.gotHint)
	}
	if len(store.objects) != 1 {
		t.Errorf("store holds %d objects, want 1", len(store.objects))
	}
	if len(pub.assetIDs) != 1 {
		t.Errorf("published %d asset events, want 1", len(pub.assetIDs))
	}
}

func TestIngestFileUnsupportedType(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{}

	svc := NewService(store, records, nil, nil, testConfig())
	outcome := svc.IngestFile(context.Background(), testProfile(), FileUpload{
		FileName: "script.exe",
		Data:     []byte("MZ"),
	})

	if !outcome.Failed() || outcome.Reason != ReasonUnsupportedType {
		t.Fatalf("outcome = %+v, want UnsupportedType failure", outcome)
	}
	if len(store.objects) != 0 {
		t.Error("unsupported file must not reach the object store")
	}
	if len(records.assets) != 0 {
		t.Error("unsupported file must not create a record")
	}
}

func TestIngestFileStorageError(t *testing.T) {
	store := newFakeObjectStore()
	store.failContentType = "image/png"
	records := &fakeRecords{}

	svc := NewService(store, records, nil, nil, testConfig())
	outcome := svc.IngestFile(context.Background(), testProfile(), FileUpload{
		FileName: "art.png",
		Data:     []byte("png bytes"),
	})

	if !outcome.Failed() || outcome.Reason != ReasonStorageError {
		t.Fatalf("outcome = %+v, want StorageError failure", outcome)
	}
	if len(records.assets) != 0 {
		t.Error("failed upload must not create a record")
	}
}

func TestIngestFileOversized(t *testing.T) {
	cfg := &config.Media{MaxFileSize: 4, UploadWorkers: 1}
	svc := NewService(newFakeObjectStore(), &fakeRecords{}, nil, nil, cfg)

	outcome := svc.IngestFile(context.Background(), testProfile(), FileUpload{
		FileName: "big.jpg",
		Data:     []byte("more than four bytes"),
	})

	if !outcome.Failed() || outcome.Reason != ReasonInvalidEntry {
		t.Fatalf("outcome = %+v, want InvalidEntry failure", outcome)
	}
}

func TestIngestFileClassifierFailureUsesDefaults(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{}
	cls := &fakeClassifier{err: errors.New("model unavailable")}

	svc := NewService(store, records, cls, nil, testConfig())
	outcome := svc.IngestFile(context.Background(), testProfile(), FileUpload{
		FileName:    "mural.jpg",
		Description: "street mural",
		Data:        []byte("jpeg"),
	})

	if outcome.Failed() {
		t.Fatalf("classifier failure must not fail ingestion: %+v", outcome)
	}
	asset := outcome.Asset
	if asset.Category != classifier.DefaultCategory {
		t.Errorf("category = %q, want %q", asset.Category, classifier.DefaultCategory)
	}
	if asset.Tags == nil || len(asset.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", asset.Tags)
	}
	if asset.Metadata[media.MetaDescription] != "street mural" {
		t.Errorf("description = %q, want the uploader's own text kept", asset.Metadata[media.MetaDescription])
	}
}

func TestIngestArchiveMixedResults(t *testing.T) {
	store := newFakeObjectStore()
	store.failContentType = "video/mp4"
	records := &fakeRecords{}
	cls := &fakeClassifier{results: []classifier.Result{
		{Category: "Travel", Tags: []string{"beach"}},
	}}
	pub := &capturePublisher{}

	svc := NewService(store, records, cls, pub, testConfig())
	data := buildZip(t, []string{"a.jpg", "b.mp4", "c.exe"})

	result, err := svc.IngestArchive(context.Background(), testProfile(), data)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}

	if result.Total != 3 || result.Succeeded != 1 || result.Failed != 2 {
		t.Fatalf("counts = %d/%d/%d, want 3 total, 1 succeeded, 2 failed",
			result.Total, result.Succeeded, result.Failed)
	}
	if result.Succeeded+result.Failed != result.Total {
		t.Fatal("succeeded+failed must equal total")
	}

	// Outcomes keep archive order regardless of which worker ran first.
	if result.Outcomes[0].Failed() {
		t.Errorf("a.jpg should succeed: %+v", result.Outcomes[0])
	}
	if result.Outcomes[1].Reason != ReasonStorageError {
		t.Errorf("b.mp4 reason = %q, want StorageError", result.Outcomes[1].Reason)
	}
	if result.Outcomes[2].Reason != ReasonUnsupportedType {
		t.Errorf("c.exe reason = %q, want UnsupportedType", result.Outcomes[2].Reason)
	}

	// Only the uploaded file reaches the classifier.
	if len(cls.gotItems) != 1 || cls.gotItems[0].FileName != "a.jpg" {
		t.Errorf("classifier items = %+v, want only a.jpg", cls.gotItems)
	}

	if len(pub.batches) != 1 || pub.batches[0] != [3]int{3, 1, 2} {
		t.Errorf("batch events = %v, want one (3,1,2)", pub.batches)
	}

	resp := result.Response()
	if resp.UploadedCount != 1 || resp.FailedCount != 2 || len(resp.Assets) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Assets[0].Category != "Travel" {
		t.Errorf("asset category = %q, want Travel", resp.Assets[0].Category)
	}
}

func TestIngestArchiveInvalid(t *testing.T) {
	svc := NewService(newFakeObjectStore(), &fakeRecords{}, nil, nil, testConfig())

	_, err := svc.IngestArchive(context.Background(), testProfile(), []byte("not a zip"))
	if !errors.Is(err, archive.ErrInvalidArchive) {
		t.Fatalf("error = %v, want ErrInvalidArchive", err)
	}
}

func TestIngestArchiveEmpty(t *testing.T) {
	svc := NewService(newFakeObjectStore(), &fakeRecords{}, nil, nil, testConfig())

	result, err := svc.IngestArchive(context.Background(), testProfile(), buildZip(t, nil))
	if err != nil {
		t.Fatalf("IngestArchive on empty zip: %v", err)
	}
	if result.Total != 0 || result.Succeeded != 0 || result.Failed != 0 {
		t.Errorf("counts = %+v, want all zero", result)
	}
}

func TestIngestArchiveDisplayOrderContiguous(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{next: 5}

	svc := NewService(store, records, nil, nil, testConfig())
	data := buildZip(t, []string{"a.jpg", "skip.xyz", "c.png"})

	result, err := svc.IngestArchive(context.Background(), testProfile(), data)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}
	if result.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", result.Succeeded)
	}

	// Failed entries must not leave holes in the assigned order.
	if got := result.Outcomes[0].Asset.DisplayOrder; got != 5 {
		t.Errorf("a.jpg display order = %d, want 5", got)
	}
	if got := result.Outcomes[2].Asset.DisplayOrder; got != 6 {
		t.Errorf("c.png display order = %d, want 6", got)
	}
}

func TestIngestArchiveRecordErrorIsolated(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{failFileName: "b.png"}

	svc := NewService(store, records, nil, nil, testConfig())
	data := buildZip(t, []string{"a.jpg", "b.png"})

	result, err := svc.IngestArchive(context.Background(), testProfile(), data)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("counts = %d/%d, want 1 succeeded, 1 failed", result.Succeeded, result.Failed)
	}
	if result.Outcomes[1].Reason != ReasonRecordError {
		t.Errorf("b.png reason = %q, want RecordError", result.Outcomes[1].Reason)
	}
	// The orphaned object stays in the store for the reconcile worker.
	if len(store.objects) != 2 {
		t.Errorf("store holds %d objects, want 2", len(store.objects))
	}
}

func TestIngestArchiveClassifierShortReply(t *testing.T) {
	store := newFakeObjectStore()
	records := &fakeRecords{}
	cls := &fakeClassifier{results: []classifier.Result{
		{Category: "Weddings", Tags: []string{"ceremony"}},
	}}

	svc := NewService(store, records, cls, nil, testConfig())
	data := buildZip(t, []string{"a.jpg", "b.png"})

	result, err := svc.IngestArchive(context.Background(), testProfile(), data)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}
	if result.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", result.Succeeded)
	}

	if got := result.Outcomes[0].Asset.Category; got != "Weddings" {
		t.Errorf("first category = %q, want Weddings", got)
	}
	if got := result.Outcomes[1].Asset.Category; got != classifier.DefaultCategory {
		t.Errorf("second category = %q, want default for the missing position", got)
	}
}

func TestIngestArchiveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(newFakeObjectStore(), &fakeRecords{}, nil, nil, testConfig())
	data := buildZip(t, []string{"a.jpg", "b.png"})

	result, err := svc.IngestArchive(ctx, testProfile(), data)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}

	// The batch still aggregates; nothing new starts after cancellation.
	if result.Failed != 2 || result.Succeeded != 0 {
		t.Fatalf("counts = %d/%d, want everything failed", result.Succeeded, result.Failed)
	}
	for _, o := range result.Outcomes {
		if o.Reason != ReasonStorageError {
			t.Errorf("%s reason = %q, want StorageError", o.FileName, o.Reason)
		}
	}
}
