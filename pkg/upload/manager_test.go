package upload

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/flow"
)

type fakeUploader struct {
	mu       sync.Mutex
	uploads  int
	deletes  []string
	result   FileMeta
	uploadFn func(File) (FileMeta, error)
	deleteFn func(string) error
	gate     chan struct{}
}

func (f *fakeUploader) Upload(_ context.Context, file File) (FileMeta, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.uploads++
	f.mu.Unlock()
	if f.uploadFn != nil {
		return f.uploadFn(file)
	}
	return f.result, nil
}

func (f *fakeUploader) Delete(_ context.Context, remoteID string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, remoteID)
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(remoteID)
	}
	return nil
}

func sampleMeta() FileMeta {
	return FileMeta{
		RemoteID:    "f-123",
		URL:         "https://cdn.example.com/f-123",
		Name:        "resume.pdf",
		Size:        2048,
		ContentType: "application/pdf",
	}
}

func sampleFile() File {
	return File{Name: "resume.pdf", Size: 2048, ContentType: "application/pdf", Content: strings.NewReader("%PDF")}
}

func TestManager_UploadSuccessWritesAnswer(t *testing.T) {
	answers := flow.NewAnswers()
	mgr := NewManager(&fakeUploader{result: sampleMeta()}, answers)

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	status := mgr.Status("attachment")
	if status.State != StateUploaded {
		t.Fatalf("expected uploaded state, got %s", status.State)
	}
	if diff := cmp.Diff(sampleMeta(), status.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
	if got, ok := answers.Get("attachment"); !ok || got.(FileMeta).RemoteID != "f-123" {
		t.Fatalf("expected answer entry for uploaded file, got %v (ok=%v)", got, ok)
	}
}

func TestManager_UploadFailureLeavesAnswerAbsent(t *testing.T) {
	answers := flow.NewAnswers()
	answers.Set("other", "kept")
	uploader := &fakeUploader{uploadFn: func(File) (FileMeta, error) {
		return FileMeta{}, errors.New("connection reset")
	}}
	mgr := NewManager(uploader, answers)

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err == nil {
		t.Fatalf("expected upload error")
	}

	status := mgr.Status("attachment")
	if status.State != StateError || status.Err == "" {
		t.Fatalf("expected error state with message, got %+v", status)
	}
	if _, ok := answers.Get("attachment"); ok {
		t.Fatalf("failed upload must not write an answer")
	}
	if answers.String("other") != "kept" {
		t.Fatalf("other fields' answers must be untouched")
	}
}

func TestManager_RetryAfterErrorIsAllowed(t *testing.T) {
	calls := 0
	uploader := &fakeUploader{uploadFn: func(File) (FileMeta, error) {
		calls++
		if calls == 1 {
			return FileMeta{}, errors.New("transient")
		}
		return sampleMeta(), nil
	}}
	mgr := NewManager(uploader, flow.NewAnswers())

	_ = mgr.Upload(context.Background(), "attachment", sampleFile())
	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("retry after error: %v", err)
	}
	if mgr.Status("attachment").State != StateUploaded {
		t.Fatalf("expected uploaded state after retry")
	}
}

func TestManager_RejectsConcurrentUploadForSameField(t *testing.T) {
	gate := make(chan struct{})
	uploader := &fakeUploader{result: sampleMeta(), gate: gate}
	mgr := NewManager(uploader, flow.NewAnswers())

	done := make(chan error, 1)
	go func() { done <- mgr.Upload(context.Background(), "attachment", sampleFile()) }()

	for mgr.Status("attachment").State != StateUploading {
		runtime.Gosched()
	}

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected ErrUploadInFlight, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first upload: %v", err)
	}
}

func TestManager_RemoveDeletesRemoteAndClearsAnswer(t *testing.T) {
	answers := flow.NewAnswers()
	uploader := &fakeUploader{result: sampleMeta()}
	mgr := NewManager(uploader, answers)

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("upload: %v", err)
	}
	mgr.Remove(context.Background(), "attachment")

	if mgr.Status("attachment").State != StateIdle {
		t.Fatalf("expected idle after remove")
	}
	if _, ok := answers.Get("attachment"); ok {
		t.Fatalf("remove must clear the answer entry")
	}
	if diff := cmp.Diff([]string{"f-123"}, uploader.deletes); diff != "" {
		t.Fatalf("deletes mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_RemoveSurvivesDeleteFailure(t *testing.T) {
	answers := flow.NewAnswers()
	uploader := &fakeUploader{
		result:   sampleMeta(),
		deleteFn: func(string) error { return errors.New("remote gone") },
	}
	mgr := NewManager(uploader, answers)

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("upload: %v", err)
	}
	mgr.Remove(context.Background(), "attachment")

	if mgr.Status("attachment").State != StateIdle {
		t.Fatalf("delete failure must not block the reset to idle")
	}
	if _, ok := answers.Get("attachment"); ok {
		t.Fatalf("delete failure must not keep the answer entry")
	}
}

func TestManager_StaleCompletionIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	answers := flow.NewAnswers()
	uploader := &fakeUploader{result: sampleMeta(), gate: gate}
	mgr := NewManager(uploader, answers)

	done := make(chan error, 1)
	go func() { done <- mgr.Upload(context.Background(), "attachment", sampleFile()) }()

	for mgr.Status("attachment").State != StateUploading {
		runtime.Gosched()
	}

	// The user removes the field while the upload is still in flight.
	mgr.Remove(context.Background(), "attachment")
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("stale completion must be discarded silently, got %v", err)
	}
	if mgr.Status("attachment").State != StateIdle {
		t.Fatalf("stale completion must not resurrect the field state")
	}
	if _, ok := answers.Get("attachment"); ok {
		t.Fatalf("stale completion must not write an answer")
	}

	// The orphaned remote file gets a best-effort cleanup.
	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	found := false
	for _, id := range uploader.deletes {
		if id == "f-123" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected orphaned upload to be deleted, got %v", uploader.deletes)
	}
}

func TestManager_ResetClearsEverything(t *testing.T) {
	answers := flow.NewAnswers()
	uploader := &fakeUploader{result: sampleMeta()}
	mgr := NewManager(uploader, answers)

	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("upload: %v", err)
	}
	mgr.Reset(context.Background())

	if mgr.Status("attachment").State != StateIdle {
		t.Fatalf("expected idle after reset")
	}
	if _, ok := answers.Get("attachment"); ok {
		t.Fatalf("reset must clear file answers")
	}
	if len(uploader.deletes) != 1 {
		t.Fatalf("expected one remote delete, got %v", uploader.deletes)
	}
}

func TestManager_FieldsUploadIndependently(t *testing.T) {
	answers := flow.NewAnswers()
	uploader := &fakeUploader{uploadFn: func(file File) (FileMeta, error) {
		if file.Name == "broken.bin" {
			return FileMeta{}, errors.New("boom")
		}
		return sampleMeta(), nil
	}}
	mgr := NewManager(uploader, answers)

	_ = mgr.Upload(context.Background(), "broken", File{Name: "broken.bin"})
	if err := mgr.Upload(context.Background(), "attachment", sampleFile()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if mgr.Status("broken").State != StateError {
		t.Fatalf("expected error state for broken field")
	}
	if mgr.Status("attachment").State != StateUploaded {
		t.Fatalf("a failing field must not affect other fields")
	}
}
