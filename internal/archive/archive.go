// Package archive implements the Extract/Compress jobs of §4.4: driving an
// external archive library (treated as a capability, per §6's Archive
// Extractor/Compressor) for batch multi-archive extraction and batch
// compression, with per-archive progress weighting and passphrase handling.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/progress"
)

var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("archive: "+format, args...)
	}
}

// Entry describes one item inside an archive, as reported by Scan, for the
// "decide destination" callback's view of the archive's top-level contents.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
}

// ErrPassphraseRequired is returned by Extract when the archive is
// encrypted and no (or a wrong) passphrase has been supplied yet.
var ErrPassphraseRequired = fmt.Errorf("archive requires a passphrase")

// ProgressFunc reports (bytes, files) done so far within the current
// archive, per §6's Archive.Extractor/Compressor "progress" signal.
type ProgressFunc func(bytesDone, filesDone int64)

// Extractor is the §6 Archive "Extractor" capability: scan an archive for
// its entries and total size, then stream its contents out.
type Extractor interface {
	// Scan returns the expected total file count, total decompressed
	// size, and the archive's top-level entries (for destination-name
	// decisions).
	Scan(ctx context.Context, archivePath string) (expectedFiles int, totalBytes int64, entries []Entry, err error)
	// CompressedSize returns the archive file's own size on disk, used to
	// weight this archive's share of job-wide progress.
	CompressedSize(archivePath string) (int64, error)
	// Extract streams the archive's contents into destDir, calling
	// onProgress as bytes/files complete. passphrase is consulted only if
	// the archive turns out to be encrypted.
	Extract(ctx context.Context, archivePath, destDir string, onProgress ProgressFunc, passphrase string) error
}

// Compressor is the §6 Archive "Compressor" capability.
type Compressor interface {
	Compress(ctx context.Context, sources []string, outputFile, format, filter, passphrase string, onProgress ProgressFunc) error
}

// PassphrasePrompter is the "opaque passphrase prompt" of §4.4 step 5: a
// capability distinct from the conflict/error dialog protocol, since it
// returns a secret rather than a response tag.
type PassphrasePrompter interface {
	RequestPassphrase(archivePath string) (passphrase string, ok bool)
}

// ExtractJob is the ExtractJob of §3.
type ExtractJob struct {
	*job.Job

	Fs         afero.Fs
	Archiver   Extractor
	Passphrase PassphrasePrompter

	Sources              []string
	DestinationDirectory string

	OutputFiles []string

	totalCompressedSize int64
	baseProgress        float64
}

// NewExtractJob constructs an ExtractJob.
func NewExtractJob(base *job.Job, fs afero.Fs, archiver Extractor, passphrase PassphrasePrompter, sources []string, destDir string) *ExtractJob {
	return &ExtractJob{Job: base, Fs: fs, Archiver: archiver, Passphrase: passphrase, Sources: sources, DestinationDirectory: destDir}
}

// Run extracts every source archive into DestinationDirectory, per §4.4.
func (j *ExtractJob) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()
	j.InhibitPower("archive extraction")

	ctx := j.Context()

	sizes := make([]int64, len(j.Sources))
	for i, src := range j.Sources {
		sz, serr := j.Archiver.CompressedSize(src)
		if serr == nil {
			sizes[i] = sz
			j.totalCompressedSize += sz
		}
	}
	// Progress is tracked in compressed-size units job-wide (§4.4's
	// per-archive weighting), not a file count known only once each
	// archive is scanned in turn.
	j.Progress.SetTotals(0, j.totalCompressedSize)

	for i, src := range j.Sources {
		if err := j.CheckCancelled(); err != nil {
			return len(j.OutputFiles) > 0, err
		}
		if err := j.extractOne(ctx, src, sizes[i]); err != nil {
			if apperrors.IsCanceled(err) {
				return len(j.OutputFiles) > 0, err
			}
			// per-archive failure already resolved by extractOne's own
			// dialog handling (Skip/Skip-all); continue with the rest.
			continue
		}
	}

	return len(j.OutputFiles) > 0, nil
}

func (j *ExtractJob) extractOne(ctx context.Context, src string, compressedSize int64) error {
	weight := 1.0
	if j.totalCompressedSize > 0 {
		weight = float64(compressedSize) / float64(j.totalCompressedSize)
	} else if len(j.Sources) > 0 {
		weight = 1.0 / float64(len(j.Sources))
	}

	expectedFiles, totalBytes, entries, err := j.Archiver.Scan(ctx, src)
	if err != nil {
		return j.handleArchiveError(src, "", err)
	}

	candidate := destinationCandidate(j.DestinationDirectory, src, entries)
	chosen := uniqueSibling(j.Fs, candidate)

	var destinationDecided bool
	passphrase := ""
	for {
		onProgress := func(bytesDone, filesDone int64) {
			frac := j.baseProgress
			var archiveFrac float64
			if totalBytes > 0 {
				archiveFrac = float64(bytesDone) / float64(totalBytes)
			} else if expectedFiles > 0 {
				archiveFrac = float64(filesDone) / float64(expectedFiles)
			}
			frac += weight * archiveFrac
			if frac > 1 {
				frac = 1
			}
			doneBytes := int64(frac * float64(j.totalCompressedSize))
			j.Progress.Report(int(filesDone), doneBytes, totalBytes > 0,
				progress.StatusLong(progress.PhraseExtracting, 1),
				progress.StatusShort(progress.PhraseExtracting, 1),
				progress.TruncateDisplayName(filepath.Base(src)), chosen)
		}

		extractErr := j.Archiver.Extract(ctx, src, chosen, onProgress, passphrase)
		if extractErr == nil {
			if !destinationDecided {
				j.OutputFiles = append(j.OutputFiles, chosen)
				destinationDecided = true
			}
			j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Added, Path: chosen})
			if j.Undo != nil {
				j.Undo.AddOriginTargetPair(src, chosen)
			}
			j.baseProgress += weight
			return nil
		}

		if extractErr == ErrPassphraseRequired {
			if j.Passphrase == nil {
				return apperrors.ErrCanceled
			}
			pw, ok := j.Passphrase.RequestPassphrase(src)
			if !ok {
				return apperrors.ErrCanceled
			}
			passphrase = pw
			continue
		}

		return j.handleArchiveError(src, chosen, extractErr)
	}
}

func (j *ExtractJob) handleArchiveError(src, partialDest string, cause error) error {
	if partialDest != "" {
		_ = j.Fs.RemoveAll(partialDest)
	}
	if j.SkipAll() {
		j.MarkSkipped(src)
		return nil
	}
	resp := j.Dialogs.Ask(dialog.Request{
		Heading: "Error extracting archive",
		Body:    src,
		Details: cause.Error(),
		Allowed: dialog.AllowSkip | dialog.AllowSkipAll | dialog.AllowCancel,
	}, j.Progress)
	switch resp.Response {
	case dialog.SkipAll:
		j.SetSkipAll()
		fallthrough
	case dialog.Skip:
		j.MarkSkipped(src)
		return nil
	default:
		return apperrors.ErrCanceled
	}
}

// destinationCandidate derives the initial unique-sibling candidate for an
// extracted archive: a single file named after the lone entry when the
// archive holds exactly one entry and it is not a directory, otherwise a
// directory named after the archive (sans extension).
func destinationCandidate(destDir, archivePath string, entries []Entry) string {
	if len(entries) == 1 && !entries[0].IsDir {
		return filepath.Join(destDir, entries[0].Name)
	}
	base := filepath.Base(archivePath)
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst", ".tgz", ".tar", ".zip", ".7z", ".rar", ".gz"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return filepath.Join(destDir, base)
}

// uniqueSibling returns candidate, or the next "name (n)" sibling if
// candidate already exists, matching §4.2's numbered-sibling pattern.
func uniqueSibling(fs afero.Fs, candidate string) string {
	if _, err := fs.Stat(candidate); err != nil {
		return candidate
	}
	dir := filepath.Dir(candidate)
	base := filepath.Base(candidate)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 2; ; n++ {
		next := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := fs.Stat(next); err != nil {
			return next
		}
	}
}

// CompressJob is the CompressJob of §3.
type CompressJob struct {
	*job.Job

	Fs         afero.Fs
	Compressor Compressor

	Sources    []string
	OutputFile string
	Format     string
	Filter     string
	Passphrase string

	TotalSize  int64
	TotalFiles int
	Success    bool
}

// NewCompressJob constructs a CompressJob.
func NewCompressJob(base *job.Job, fs afero.Fs, compressor Compressor, sources []string, output, format, filter, passphrase string) *CompressJob {
	return &CompressJob{Job: base, Fs: fs, Compressor: compressor, Sources: sources, OutputFile: output, Format: format, Filter: filter, Passphrase: passphrase}
}

// Run scans sources, filters any scan-time skips, and hands the remainder
// to the Compressor capability, per §4.4 "Compress".
func (j *CompressJob) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()
	j.InhibitPower("archive compression")

	info, serr := job.ScanSources(j.Job, j.Fs, j.Sources, false, nil)
	if serr != nil {
		return false, serr
	}
	j.TotalSize = info.NumBytes
	j.TotalFiles = info.NumFiles
	j.Progress.SetTotals(j.TotalFiles, j.TotalSize)

	remaining := make([]string, 0, len(j.Sources))
	for _, src := range j.Sources {
		if !j.IsSkipped(src) {
			remaining = append(remaining, src)
		}
	}
	if len(remaining) == 0 {
		j.Success = false
		return false, apperrors.NewArchiveError("compress", j.OutputFile, "no sources remained after scan", apperrors.ErrCanceled)
	}

	ctx := j.Context()
	onProgress := func(bytesDone, filesDone int64) {
		j.Progress.Report(int(filesDone), bytesDone, j.TotalSize > 0,
			progress.StatusLong(progress.PhraseCompressing, j.TotalFiles),
			progress.StatusShort(progress.PhraseCompressing, j.TotalFiles),
			progress.TruncateDisplayName(filepath.Base(j.OutputFile)), j.OutputFile)
	}

	if err := j.Compressor.Compress(ctx, remaining, j.OutputFile, j.Format, j.Filter, j.Passphrase, onProgress); err != nil {
		if apperrors.IsCanceled(err) {
			return false, err
		}
		j.Dialogs.Ask(dialog.Request{
			Heading: "Error creating archive",
			Body:    j.OutputFile,
			Details: err.Error(),
			Allowed: dialog.AllowCancel,
		}, j.Progress)
		j.Success = false
		return false, apperrors.NewArchiveError("compress", j.OutputFile, "compression failed", err)
	}

	j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Added, Path: j.OutputFile})
	if j.Undo != nil {
		if _, statErr := j.Fs.Stat(j.OutputFile); statErr == nil {
			j.Undo.AddOriginTargetPair("", j.OutputFile)
		}
	}
	j.Success = true
	return true, nil
}
