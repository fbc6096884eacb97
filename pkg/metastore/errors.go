package metastore

import "errors"

var (
	ErrNotExist      = errors.New("metastore: no such file or directory")
	ErrExist         = errors.New("metastore: file or directory already exists")
	ErrNotEmpty      = errors.New("metastore: directory not empty")
	ErrIsDir         = errors.New("metastore: is a directory")
	ErrNotDir        = errors.New("metastore: not a directory")
	ErrCorruptMeta   = errors.New("metastore: corrupt persisted metadata")
	ErrInvalidRename = errors.New("metastore: invalid rename")
)
