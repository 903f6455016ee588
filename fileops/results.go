package fileops

// CopyMoveResult is the on_done payload for copy/move/duplicate/link (§7
// "done-callback always fires with success, plus for copy/move the
// debuting_files map").
type CopyMoveResult struct {
	Success       bool
	DebutingFiles map[string]bool
	Err           error
}

// DeleteResult is the on_done payload for trash_or_delete_async/delete_async.
type DeleteResult struct {
	Success    bool
	UserCancel bool
	Err        error
}

// CreateResult is the on_done payload for new_folder/new_file/
// new_file_from_template/paste_image_from_clipboard/save_image_from_texture.
type CreateResult struct {
	Success     bool
	CreatedFile string
	Err         error
}

// RenameResult is the on_done payload for rename.
type RenameResult struct {
	Success   bool
	Cancelled bool
	NewPath   string
	Err       error
}

// ExtractResult is the on_done payload for extract_files.
type ExtractResult struct {
	Success bool
	Err     error
}

// CompressResult is the on_done payload for compress.
type CompressResult struct {
	Success bool
	Err     error
}

// PermissionsResult is the on_done payload for set_permissions_recursive.
type PermissionsResult struct {
	Success    bool
	NumApplied int
	Err        error
}

// UnmountResult is the on_done payload for unmount_mount_full.
type UnmountResult struct {
	Success bool
	Err     error
}
