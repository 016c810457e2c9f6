package notebook

import (
	"errors"
	"fmt"
)

type errorKind int

const (
	invalidStructure errorKind = iota
	storedNodeConversion
	nodeAlreadyExists
	nodeDoesNotExist
	payloadAlreadyExists
	payloadDoesNotExist
	illegalOperation
	parseFailure
)

var errorPrefixes = map[errorKind]string{
	invalidStructure:     "Invalid structure",
	storedNodeConversion: "Cannot convert stored node",
	nodeAlreadyExists:    "Node already exists",
	nodeDoesNotExist:     "Node does not exist",
	payloadAlreadyExists: "Payload already exists",
	payloadDoesNotExist:  "Payload does not exist",
	illegalOperation:     "Illegal operation",
	parseFailure:         "Parse error",
}

// notebookError is the single error type behind all error kinds of this
// package. Use the IsXxx functions to check for a specific kind.
type notebookError struct {
	kind    errorKind
	message string
}

func (e notebookError) Error() string {
	return e.message
}

func newError(k errorKind, msg string, v ...interface{}) error {
	return notebookError{
		kind:    k,
		message: fmt.Sprintf("%v: %v", errorPrefixes[k], fmt.Sprintf(msg, v...)),
	}
}

func isKind(err error, k errorKind) bool {
	var e notebookError
	if errors.As(err, &e) {
		return e.kind == k
	}
	return false
}

// NewInvalidStructureError creates an error for a stored node graph that
// violates a tree invariant.
func NewInvalidStructureError(msg string, v ...interface{}) error {
	return newError(invalidStructure, msg, v...)
}

// IsInvalidStructure checks if the given error is an "invalid structure" error.
func IsInvalidStructure(err error) bool {
	return isKind(err, invalidStructure)
}

// NewStoredNodeConversionError is returned if no Dao accepts a content type.
func NewStoredNodeConversionError(msg string, v ...interface{}) error {
	return newError(storedNodeConversion, msg, v...)
}

func IsStoredNodeConversion(err error) bool {
	return isKind(err, storedNodeConversion)
}

func NewNodeAlreadyExistsError(id string) error {
	return newError(nodeAlreadyExists, "node %q", id)
}

func IsNodeAlreadyExists(err error) bool {
	return isKind(err, nodeAlreadyExists)
}

func NewNodeDoesNotExistError(id string) error {
	return newError(nodeDoesNotExist, "node %q", id)
}

func IsNodeDoesNotExist(err error) bool {
	return isKind(err, nodeDoesNotExist)
}

func NewPayloadAlreadyExistsError(id, name string) error {
	return newError(payloadAlreadyExists, "payload %q of node %q", name, id)
}

func IsPayloadAlreadyExists(err error) bool {
	return isKind(err, payloadAlreadyExists)
}

func NewPayloadDoesNotExistError(id, name string) error {
	return newError(payloadDoesNotExist, "payload %q of node %q", name, id)
}

func IsPayloadDoesNotExist(err error) bool {
	return isKind(err, payloadDoesNotExist)
}

// NewIllegalOperationError is used for mutations that violate the node
// lifecycle, e.g. deleting the root or moving a node into its own subtree.
func NewIllegalOperationError(msg string, v ...interface{}) error {
	return newError(illegalOperation, msg, v...)
}

func IsIllegalOperation(err error) bool {
	return isKind(err, illegalOperation)
}

// NewParseError is used by storage backends for malformed persisted data.
func NewParseError(path, msg string, v ...interface{}) error {
	return newError(parseFailure, "%v: %v", path, fmt.Sprintf(msg, v...))
}

func IsParseError(err error) bool {
	return isKind(err, parseFailure)
}

// Wrap wraps an error by prepending additional text.
// The text can contain formatting parameters.
// The wrapped error can still be recognized with the IsXxx functions.
func Wrap(err error, msg string, v ...interface{}) error {
	msg = fmt.Sprintf(msg, v...)
	return fmt.Errorf("%v: %w", msg, err)
}
