package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mholt/archives"
)

// MholtArchiver is the concrete Extractor/Compressor backed by
// github.com/mholt/archives — the one pack dependency the teacher's go.mod
// already declared but never actually wired into any code path; see
// DESIGN.md.
type MholtArchiver struct{}

var _ Extractor = MholtArchiver{}
var _ Compressor = MholtArchiver{}

// Scan identifies the archive's format and walks its entries once, without
// writing anything to disk, to establish the file count and total
// decompressed size used for destination naming and progress weighting.
func (MholtArchiver) Scan(ctx context.Context, archivePath string) (int, int64, []Entry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	format, reader, err := archives.Identify(ctx, archivePath, f)
	if err != nil {
		return 0, 0, nil, err
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return 0, 0, nil, ErrUnsupportedFormat
	}

	var entries []Entry
	var totalBytes int64
	err = extractor.Extract(ctx, reader, func(ctx context.Context, fi archives.FileInfo) error {
		entries = append(entries, Entry{
			Name:  fi.NameInArchive,
			Size:  fi.Size(),
			IsDir: fi.IsDir(),
		})
		if !fi.IsDir() {
			totalBytes += fi.Size()
		}
		return nil
	})
	if err != nil {
		if isPassphraseErr(err) {
			return 0, 0, nil, ErrPassphraseRequired
		}
		return 0, 0, nil, err
	}
	return len(entries), totalBytes, entries, nil
}

// CompressedSize returns the archive file's own on-disk size.
func (MholtArchiver) CompressedSize(archivePath string) (int64, error) {
	fi, err := os.Stat(archivePath)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Extract streams the archive's contents into destDir, creating
// directories as needed and reporting progress after every entry.
func (MholtArchiver) Extract(ctx context.Context, archivePath, destDir string, onProgress ProgressFunc, passphrase string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	format, reader, err := archives.Identify(ctx, archivePath, f)
	if err != nil {
		return err
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return ErrUnsupportedFormat
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	var bytesDone, filesDone int64
	err = extractor.Extract(ctx, reader, func(ctx context.Context, entry archives.FileInfo) error {
		target := destDir + string(os.PathSeparator) + entry.NameInArchive
		if entry.IsDir() {
			return os.MkdirAll(target, entry.Mode())
		}
		if err := os.MkdirAll(parentDir(target), 0o755); err != nil {
			return err
		}
		src, err := entry.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, entry.Mode())
		if err != nil {
			return err
		}
		defer out.Close()
		n, err := io.Copy(out, src)
		if err != nil {
			return err
		}
		bytesDone += n
		filesDone++
		if onProgress != nil {
			onProgress(bytesDone, filesDone)
		}
		return nil
	})
	if err != nil {
		if isPassphraseErr(err) {
			return ErrPassphraseRequired
		}
		return err
	}
	return nil
}

// Compress archives sources into outputFile using the named format/filter
// (e.g. format "tar", filter "gz", or format "zip" with no filter).
func (MholtArchiver) Compress(ctx context.Context, sources []string, outputFile, format, filter, passphrase string, onProgress ProgressFunc) error {
	diskFiles := make(map[string]string, len(sources))
	for _, src := range sources {
		diskFiles[src] = baseName(src)
	}
	files, err := archives.FilesFromDisk(ctx, nil, diskFiles)
	if err != nil {
		return err
	}

	out, err := os.OpenFile(outputFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	archiver, err := archivalFor(format, filter)
	if err != nil {
		return err
	}

	var filesDone int64
	var progressWriter *countingWriter
	progressWriter = &countingWriter{w: out, onWrite: func(n int64) {
		if onProgress != nil {
			filesDone++
			onProgress(progressWriter.total, filesDone)
		}
	}}

	return archiver.Archive(ctx, progressWriter, files)
}

// archivalFor resolves a (format, filter) pair into a mholt/archives
// CompressedArchive value, matching the subset of formats §4.4 names:
// zip, tar, tar+gzip, tar+bzip2, tar+xz, tar+zstd.
func archivalFor(format, filter string) (archives.CompressedArchive, error) {
	ca := archives.CompressedArchive{}
	switch strings.ToLower(format) {
	case "zip":
		ca.Archival = archives.Zip{}
	case "tar", "":
		ca.Archival = archives.Tar{}
	default:
		return ca, ErrUnsupportedFormat
	}
	switch strings.ToLower(filter) {
	case "gz", "gzip":
		ca.Compression = archives.Gz{}
	case "bz2", "bzip2":
		ca.Compression = archives.Bz2{}
	case "xz":
		ca.Compression = archives.Xz{}
	case "zst", "zstd":
		ca.Compression = archives.Zstd{}
	case "":
		// no second-stage compression, e.g. a plain zip or bare tar
	default:
		return ca, ErrUnsupportedFormat
	}
	return ca, nil
}

// ErrUnsupportedFormat is returned when the archive's detected format has
// no registered Extractor/Archival, or a requested Compress format/filter
// pair isn't one of the spec's supported combinations.
var ErrUnsupportedFormat = fmt.Errorf("unsupported archive format")

func isPassphraseErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "passphrase") || strings.Contains(msg, "encrypted")
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, os.PathSeparator)
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

func baseName(path string) string {
	idx := strings.LastIndexByte(path, os.PathSeparator)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

type countingWriter struct {
	w       io.Writer
	total   int64
	onWrite func(n int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.total += int64(n)
	if c.onWrite != nil {
		c.onWrite(int64(n))
	}
	return n, err
}
