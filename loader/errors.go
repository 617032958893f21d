package loader

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// StoreError wraps a failure to reach the record store. During the initial
// page load it is fatal to startup; everywhere else it is logged and the
// affected records stay Unloaded for a later pass.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("record store unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// ChunkError reports the failure of one chunk of a child fetch. It is always
// non-fatal and localized to the order IDs in that chunk.
type ChunkError struct {
	Chunk int
	Total int
	IDs   []string
	Err   error
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	return fmt.Sprintf("child fetch chunk %d/%d failed for %d orders: %v", e.Chunk+1, e.Total, len(e.IDs), e.Err)
}

// Unwrap exposes the underlying fetch error.
func (e *ChunkError) Unwrap() error {
	return e.Err
}

// IsStoreUnavailable reports whether err represents a store transport failure.
func IsStoreUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsChunkError reports whether err represents a failed child-fetch chunk.
func IsChunkError(err error) bool {
	var ce *ChunkError
	return errors.As(err, &ce)
}

// IsTimeout reports whether err was caused by a per-fetch timeout, either a
// context deadline or a network-level timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
