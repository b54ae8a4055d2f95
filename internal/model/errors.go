package model

import "errors"

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record with this id already exists")
)

// ErrBusy means another operation holds the lock on the record.
var ErrBusy = errors.New("record is busy, try again later")
