package fileops

import (
	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/archive"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/undo"
)

// ExtractFiles is extract_files.
func (s *Service) ExtractFiles(sources []string, destinationDir string, parentWindow, dbus interface{}, onDone func(ExtractResult)) *jobs.Handle {
	if s.Extractor == nil {
		if onDone != nil {
			onDone(ExtractResult{Success: false, Err: apperrors.NewJobError("extract_files", destinationDir, "no archive extractor wired", apperrors.ErrNotSupported)})
		}
		return nil
	}
	base := s.newJob(job.KindExtract, parentWindow, dbus, undo.OpExtract)
	j := archive.NewExtractJob(base, s.Fs, s.Extractor, s.Passphrase, sources, destinationDir)
	run := runnableFunc(func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(ExtractResult{Success: ok, Err: err})
		}
		return ok, err
	})
	return s.Jobs.Launch(job.KindExtract, base, run)
}

// ExtractFilesSync runs extract_files' job inline.
func (s *Service) ExtractFilesSync(sources []string, destinationDir string, parentWindow, dbus interface{}) ExtractResult {
	if s.Extractor == nil {
		return ExtractResult{Success: false, Err: apperrors.NewJobError("extract_files", destinationDir, "no archive extractor wired", apperrors.ErrNotSupported)}
	}
	base := s.newJob(job.KindExtract, parentWindow, dbus, undo.OpExtract)
	j := archive.NewExtractJob(base, s.Fs, s.Extractor, s.Passphrase, sources, destinationDir)
	ok, err := j.Run()
	return ExtractResult{Success: ok, Err: err}
}

// Compress is compress.
func (s *Service) Compress(sources []string, output, format, filter, passphrase string, parentWindow, dbus interface{}, onDone func(CompressResult)) *jobs.Handle {
	if s.Compressor == nil {
		if onDone != nil {
			onDone(CompressResult{Success: false, Err: apperrors.NewJobError("compress", output, "no archive compressor wired", apperrors.ErrNotSupported)})
		}
		return nil
	}
	base := s.newJob(job.KindCompress, parentWindow, dbus, undo.OpCompress)
	j := archive.NewCompressJob(base, s.Fs, s.Compressor, sources, output, format, filter, passphrase)
	run := runnableFunc(func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(CompressResult{Success: ok, Err: err})
		}
		return ok, err
	})
	return s.Jobs.Launch(job.KindCompress, base, run)
}

// CompressSync runs compress' job inline.
func (s *Service) CompressSync(sources []string, output, format, filter, passphrase string, parentWindow, dbus interface{}) CompressResult {
	if s.Compressor == nil {
		return CompressResult{Success: false, Err: apperrors.NewJobError("compress", output, "no archive compressor wired", apperrors.ErrNotSupported)}
	}
	base := s.newJob(job.KindCompress, parentWindow, dbus, undo.OpCompress)
	j := archive.NewCompressJob(base, s.Fs, s.Compressor, sources, output, format, filter, passphrase)
	ok, err := j.Run()
	return CompressResult{Success: ok, Err: err}
}
