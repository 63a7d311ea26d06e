// Package fat32err collects the sentinel error values returned by every
// package in this module, following a single consistent scheme instead of
// the mix of conventions a large driver framework tends to accumulate.

package fat32err

import (
	"fmt"
)

type DiskoError string

const ErrArgumentOutOfRange = DiskoError("Numerical argument out of domain")
const ErrCacheFull = DiskoError("Sector cache is full and every resident entry is leased")
const ErrDirectoryNotEmpty = DiskoError("Directory not empty")
const ErrDiskFull = DiskoError("No space left on device")
const ErrExists = DiskoError("File exists")
const ErrFileSystemCorrupted = DiskoError("Structure needs cleaning")
const ErrGrowWithoutEnd = DiskoError("Cannot grow a chain that has not reached its end")
const ErrInvalidArgument = DiskoError("Invalid argument")
const ErrInvalidFileSystem = DiskoError("Wrong medium type")
const ErrIOFailed = DiskoError("Input/output error")
const ErrIsADirectory = DiskoError("Is a directory")
const ErrNotADirectory = DiskoError("Not a directory")
const ErrNotAFile = DiskoError("Not a regular file")
const ErrNotFound = DiskoError("No such file or directory")
const ErrNotImplemented = DiskoError("Function not implemented")
const ErrOutOfRange = DiskoError("Requested offset falls outside the storage medium")
const ErrUninitialized = DiskoError("Requested data has never been written")
const ErrUnexpectedEOF = DiskoError("Unexpected end of file or stream")

func (e DiskoError) Error() string {
	return string(e)
}

func (e DiskoError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e DiskoError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}
