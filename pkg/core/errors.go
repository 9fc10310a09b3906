package core

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	ErrEmptyContent        = errors.New("content is empty")
	ErrNoChunks            = errors.New("no chunks provided")
	ErrNotFound            = errors.New("not found in local storage")
	ErrDiscovery           = errors.New("peer discovery unavailable")
	ErrNoPeers             = errors.New("no peers available")
	ErrPeerNotFound        = errors.New("peer not reachable")
	ErrManifestUnavailable = errors.New("manifest unavailable from peers")
	ErrChunkUnavailable    = errors.New("chunk unavailable from peer")
)

// IntegrityError reports a content hash mismatch: the data behind an ID does
// not hash to that ID. It is distinct from a not-found miss so callers can
// tell "try elsewhere" apart from "this data is wrong".
type IntegrityError struct {
	Subject  string // "chunk", "content"
	ID       string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s %s: expected %s, got %s",
		e.Subject, e.ID, e.Expected, e.Actual)
}

// SizeMismatchError reports reassembled content whose length does not match
// the manifest's declared total size.
type SizeMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: manifest declares %d bytes, assembled %d", e.Expected, e.Actual)
}
