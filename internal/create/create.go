// Package create implements the Create/Rename/Set-permissions engine of
// §4.5: new file/folder/template creation with filename mangling and
// numbered-variant collision handling, plain rename, and recursive
// permission application.
package create

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/nekomimist/fileopsd/internal/apperrors"
	"github.com/nekomimist/fileopsd/internal/changequeue"
	"github.com/nekomimist/fileopsd/internal/dialog"
	"github.com/nekomimist/fileopsd/internal/job"
	"github.com/nekomimist/fileopsd/internal/progress"
)

const createFlags = os.O_CREATE | os.O_EXCL | os.O_WRONLY

var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("create: "+format, args...)
	}
}

// RecentRegistrar is the desktop's recent-files list, registered by URI
// string on a successful create (§4.5 "register with the desktop's
// recent-files list").
type RecentRegistrar interface {
	Register(uri string)
}

const (
	defaultFolderName   = "Untitled Folder"
	defaultDocumentName = "Untitled Document"
)

// Job is the CreateJob of §3.
type Job struct {
	*job.Job

	Fs       afero.Fs
	Policies *job.PolicyCache
	Recent   RecentRegistrar

	DestDir     string
	Filename    string // empty selects the localized default
	MakeDir     bool
	TemplateSrc string // non-empty: copy-from-template
	SrcData     []byte // non-nil (even if empty): create+write(bytes)
	NewMtime    bool

	CreatedFile string
	mangled     bool
	doneFiles   int
}

// New constructs a CreateJob.
func New(base *job.Job, fs afero.Fs, policies *job.PolicyCache, recent RecentRegistrar, destDir, filename string, makeDir bool, templateSrc string, srcData []byte) *Job {
	return &Job{Job: base, Fs: fs, Policies: policies, Recent: recent, DestDir: destDir, Filename: filename, MakeDir: makeDir, TemplateSrc: templateSrc, SrcData: srcData}
}

// Run resolves the initial filename and loops create -> handle collision /
// invalid-filename -> retry, per §4.5.
func (j *Job) Run() (success bool, err error) {
	j.Start()
	defer func() { j.Finalize(success) }()
	j.InhibitPower("create")
	j.Progress.SetTotals(1, 0)

	name := j.resolveInitialName()
	_, policy, perr := j.Policies.QueryFSType(filepath.Join(j.DestDir, name))
	if perr != nil {
		policy = nil
	}
	if policy != nil && policy.NeedsMangling() {
		if mangled, changed := policy.Mangle(name); changed {
			name = mangled
			j.mangled = true
		}
	}

	baseName := name
	for attempt := 0; ; attempt++ {
		if err := j.CheckCancelled(); err != nil {
			return false, err
		}
		candidate := filepath.Join(j.DestDir, name)
		createErr := j.tryCreate(candidate)
		if createErr == nil {
			j.CreatedFile = candidate
			j.Changes.Enqueue(changequeue.Entry{Kind: changequeue.Added, Path: candidate})
			if j.Recent != nil {
				j.Recent.Register("file://" + candidate)
			}
			if j.Undo != nil {
				j.Undo.AddOriginTargetPair("", candidate)
			}
			j.doneFiles++
			j.Progress.Report(j.doneFiles, 0, false,
				progress.StatusLong(progress.PhraseCopying, 1), progress.StatusShort(progress.PhraseCopying, 1),
				progress.TruncateDisplayName(name), "")
			return true, nil
		}

		if apperrors.IsCanceled(createErr) {
			return false, createErr
		}

		if isExists(createErr) {
			name = numberedVariant(baseName, attempt+2, j.MakeDir)
			continue
		}

		resp := j.Dialogs.Ask(dialog.Request{
			Heading: "Error creating item",
			Body:    candidate,
			Details: createErr.Error(),
			Allowed: dialog.AllowSkip | dialog.AllowCancel,
		}, j.Progress)
		_ = resp
		return false, createErr
	}
}

func (j *Job) resolveInitialName() string {
	if j.Filename != "" {
		return j.Filename
	}
	if j.MakeDir {
		return defaultFolderName
	}
	if j.TemplateSrc != "" {
		return filepath.Base(j.TemplateSrc)
	}
	return defaultDocumentName
}

func (j *Job) tryCreate(candidate string) error {
	switch {
	case j.MakeDir:
		if _, err := j.Fs.Stat(candidate); err == nil {
			return apperrors.ErrExists
		}
		return j.Fs.Mkdir(candidate, 0o755)
	case j.TemplateSrc != "":
		if _, err := j.Fs.Stat(candidate); err == nil {
			return apperrors.ErrExists
		}
		src, err := j.Fs.Open(j.TemplateSrc)
		if err != nil {
			return err
		}
		defer src.Close()
		out, err := j.Fs.OpenFile(candidate, createFlags, 0o644)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, src)
		return err
	default:
		if _, err := j.Fs.Stat(candidate); err == nil {
			return apperrors.ErrExists
		}
		out, err := j.Fs.OpenFile(candidate, createFlags, 0o644)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = out.Write(j.SrcData)
		return err
	}
}

// numberedVariant appends " (n)" (directories, or "ignore extension" per
// §4.5) or "name (n).ext" (files) to produce the next candidate name.
func numberedVariant(name string, n int, ignoreExtension bool) string {
	if ignoreExtension {
		return fmt.Sprintf("%s (%d)", name, n)
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

func isExists(err error) bool {
	return errors.Is(err, apperrors.ErrExists) || errors.Is(err, os.ErrExist)
}
