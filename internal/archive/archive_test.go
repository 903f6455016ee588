package archive

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
)

type fakeExtractor struct {
	entries       []Entry
	totalBytes    int64
	failFirstWith error
}

func (f *fakeExtractor) Scan(ctx context.Context, archivePath string) (int, int64, []Entry, error) {
	return len(f.entries), f.totalBytes, f.entries, nil
}

func (f *fakeExtractor) CompressedSize(archivePath string) (int64, error) { return 10, nil }

func (f *fakeExtractor) Extract(ctx context.Context, archivePath, destDir string, onProgress ProgressFunc, passphrase string) error {
	if f.failFirstWith != nil {
		err := f.failFirstWith
		f.failFirstWith = nil
		return err
	}
	if onProgress != nil {
		onProgress(f.totalBytes, int64(len(f.entries)))
	}
	return nil
}

type fakeCompressor struct {
	called bool
	err    error
}

func (f *fakeCompressor) Compress(ctx context.Context, sources []string, outputFile, format, filter, passphrase string, onProgress ProgressFunc) error {
	f.called = true
	if onProgress != nil {
		onProgress(100, int64(len(sources)))
	}
	return f.err
}

func newTestJob(reply dialog.Reply, queue *changequeue.Queue) *job.Job {
	svc := dialog.NewService(dialog.AutoPresenter{Reply: reply})
	return job.New(job.KindExtract, nil, nil, queue, svc)
}

func TestExtractSingleArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/dest", 0o755)
	queue := changequeue.New()
	ex := &fakeExtractor{entries: []Entry{{Name: "a.txt", Size: 4}, {Name: "b.txt", Size: 4}}, totalBytes: 8}

	ej := NewExtractJob(newTestJob(dialog.Reply{Response: dialog.Skip}, queue), fs, ex, nil, []string{"/src/archive.zip"}, "/dest")
	success, err := ej.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if len(ej.OutputFiles) != 1 {
		t.Fatalf("expected one output directory, got %v", ej.OutputFiles)
	}
	if ej.OutputFiles[0] != "/dest/archive" {
		t.Errorf("expected /dest/archive, got %s", ej.OutputFiles[0])
	}
	if queue.Len() == 0 {
		t.Error("expected an Added ChangeEntry")
	}
}

func TestExtractSkipsOnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	queue := changequeue.New()
	ex := &fakeExtractor{entries: []Entry{{Name: "a.txt", Size: 1}}, totalBytes: 1, failFirstWith: ErrUnsupportedFormatForTest}

	ej := NewExtractJob(newTestJob(dialog.Reply{Response: dialog.Skip}, queue), fs, ex, nil, []string{"/src/bad.zip"}, "/dest")
	success, err := ej.Run()
	if err != nil {
		t.Fatalf("expected no hard error after skip, got %v", err)
	}
	if success {
		t.Error("expected no output files when the only archive was skipped")
	}
}

func TestCompressSucceeds(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.txt", []byte("hello"), 0o644)
	queue := changequeue.New()
	comp := &fakeCompressor{}

	cj := NewCompressJob(newTestJob(dialog.Reply{}, queue), fs, comp, []string{"/src/a.txt"}, "/out.zip", "zip", "", "")
	success, err := cj.Run()
	if err != nil || !success {
		t.Fatalf("expected success, got success=%v err=%v", success, err)
	}
	if !comp.called {
		t.Error("expected Compressor.Compress to be called")
	}
	if queue.Len() == 0 {
		t.Error("expected an Added ChangeEntry for the output file")
	}
}

// ErrUnsupportedFormatForTest stands in for an opaque extraction failure
// that isn't a passphrase prompt, so the job's generic error dialog path
// runs instead of the passphrase loop.
var ErrUnsupportedFormatForTest = ErrUnsupportedFormat
