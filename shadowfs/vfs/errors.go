package vfs

import "errors"

var (
	ErrSourceNotExist = errors.New("source does not exist")
	ErrSourceNotDir   = errors.New("source is not a directory")
	ErrDuplicateLayer = errors.New("layer name already registered")
	ErrUnknownLayer   = errors.New("no layer registered under that name")
)
