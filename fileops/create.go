package fileops

import (
	"path/filepath"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/create"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/jobs"
	"github.com/nekomimist/fileopsd/internal/undo"
)

func createDone(j *create.Job, onDone func(CreateResult)) runnableFunc {
	return func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(CreateResult{Success: ok, CreatedFile: j.CreatedFile, Err: err})
		}
		return ok, err
	}
}

// Rename is rename: a plain single-item rename with no scan/verify phase.
// §3 names this a RenameJob rather than a CreateJob; the undo side still
// reverses it exactly like a move (fs.Rename(target, origin)), so it
// shares undo.OpMove rather than a dedicated op kind.
func (s *Service) Rename(location, newName string, parentView, dbus interface{}, onDone func(RenameResult)) *jobs.Handle {
	base := s.newJob(job.KindRename, parentView, dbus, undo.OpMove)
	j := create.NewRenameJob(base, s.Fs, location, newName)
	run := runnableFunc(func() (bool, error) {
		ok, err := j.Run()
		if onDone != nil {
			onDone(RenameResult{Success: ok, Cancelled: j.Cancelled, NewPath: j.NewPath, Err: err})
		}
		return ok, err
	})
	return s.Jobs.Launch(job.KindRename, base, run)
}

// RenameSync runs rename's job inline.
func (s *Service) RenameSync(location, newName string, parentView, dbus interface{}) RenameResult {
	base := s.newJob(job.KindRename, parentView, dbus, undo.OpMove)
	j := create.NewRenameJob(base, s.Fs, location, newName)
	ok, err := j.Run()
	return RenameResult{Success: ok, Cancelled: j.Cancelled, NewPath: j.NewPath, Err: err}
}

// NewFolder is new_folder.
func (s *Service) NewFolder(parentView, dbus interface{}, parentDir, folderName string, onDone func(CreateResult)) *jobs.Handle {
	base := s.newJob(job.KindCreate, parentView, dbus, undo.OpCreateFolder)
	j := create.New(base, s.Fs, s.Policies, s.Recent, parentDir, folderName, true, "", nil)
	return s.Jobs.Launch(job.KindCreate, base, createDone(j, onDone))
}

// NewFile is new_file: initialContents is always written, even if empty
// (see create.Job.SrcData: non-nil, even if empty, means create+write(bytes)).
func (s *Service) NewFile(parentView interface{}, parentDir, targetFilename string, initialContents []byte, onDone func(CreateResult)) *jobs.Handle {
	base := s.newJob(job.KindCreate, parentView, nil, undo.OpCreateEmptyFile)
	if initialContents == nil {
		initialContents = []byte{}
	}
	j := create.New(base, s.Fs, s.Policies, s.Recent, parentDir, targetFilename, false, "", initialContents)
	return s.Jobs.Launch(job.KindCreate, base, createDone(j, onDone))
}

// NewFileFromTemplate is new_file_from_template.
func (s *Service) NewFileFromTemplate(parentView interface{}, parentDir, targetFilename, templateURI string, onDone func(CreateResult)) *jobs.Handle {
	base := s.newJob(job.KindCreate, parentView, nil, undo.OpCreateFileFromTemplate)
	j := create.New(base, s.Fs, s.Policies, s.Recent, parentDir, targetFilename, false, templateURI, nil)
	return s.Jobs.Launch(job.KindCreate, base, createDone(j, onDone))
}

// PasteImageFromClipboard is paste_image_from_clipboard: it pulls the
// clipboard's current image synchronously (there's nothing to scan or
// verify about a clipboard read) and hands the bytes to the same
// create+write(bytes) path new_file uses.
func (s *Service) PasteImageFromClipboard(parentView, dbus interface{}, parentDirURI string, onDone func(CreateResult)) *jobs.Handle {
	if s.Clipboard == nil {
		if onDone != nil {
			onDone(CreateResult{Success: false, Err: apperrors.NewJobError("paste_image_from_clipboard", parentDirURI, "no clipboard capability wired", apperrors.ErrNotSupported)})
		}
		return nil
	}
	data, name, ok := s.Clipboard.ImageBytes()
	if !ok {
		if onDone != nil {
			onDone(CreateResult{Success: false, Err: apperrors.NewJobError("paste_image_from_clipboard", parentDirURI, "clipboard holds no image", apperrors.ErrNotSupported)})
		}
		return nil
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	base := s.newJob(job.KindCreate, parentView, dbus, undo.OpCreateEmptyFile)
	j := create.New(base, s.Fs, s.Policies, s.Recent, parentDirURI, name, false, "", data)
	return s.Jobs.Launch(job.KindCreate, base, createDone(j, onDone))
}

// SaveImageFromTexture is save_image_from_texture: baseName gets a .png
// extension if it doesn't already have one, matching the one format this
// engine's TextureEncoder capability ever produces.
func (s *Service) SaveImageFromTexture(parentView, dbus interface{}, parentDirURI, baseName string, texture TextureEncoder, onDone func(CreateResult)) *jobs.Handle {
	if texture == nil {
		if onDone != nil {
			onDone(CreateResult{Success: false, Err: apperrors.NewJobError("save_image_from_texture", parentDirURI, "no texture given", apperrors.ErrNotSupported)})
		}
		return nil
	}
	data, err := texture.EncodePNG()
	if err != nil {
		if onDone != nil {
			onDone(CreateResult{Success: false, Err: err})
		}
		return nil
	}
	filename := baseName
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	base := s.newJob(job.KindCreate, parentView, dbus, undo.OpCreateEmptyFile)
	j := create.New(base, s.Fs, s.Policies, s.Recent, parentDirURI, filename, false, "", data)
	return s.Jobs.Launch(job.KindCreate, base, createDone(j, onDone))
}
