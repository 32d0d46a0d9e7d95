// Package hictkerr defines the tagged error kinds shared by every hictk
// component. Errors are sentinel values, matched with errors.Is, never
// used for ordinary control flow.
package hictkerr

import "errors"

var (
	// ErrBadFileFormat indicates a magic-byte or schema mismatch at open time.
	ErrBadFileFormat = errors.New("hictk: bad file format")

	// ErrBadBinTable indicates a BinTable invariant violation (overlap,
	// gap, or non-monotonic ordering).
	ErrBadBinTable = errors.New("hictk: bad bin table")

	// ErrBadRange indicates an unparseable or out-of-bounds genomic range.
	ErrBadRange = errors.New("hictk: bad range")

	// ErrUnknownResolution indicates a requested resolution is not present
	// in the container.
	ErrUnknownResolution = errors.New("hictk: unknown resolution")

	// ErrUnknownNormalization indicates a requested weight/normalization
	// name is not present for the chosen resolution.
	ErrUnknownNormalization = errors.New("hictk: unknown normalization")

	// ErrUnknownChromosome indicates a chromosome name not present in the
	// Reference.
	ErrUnknownChromosome = errors.New("hictk: unknown chromosome")

	// ErrConflictingQueryOptions indicates mutually exclusive query flags
	// were set together (e.g. cis-only with an explicit range).
	ErrConflictingQueryOptions = errors.New("hictk: conflicting query options")

	// ErrBalancingDivergence indicates a balancer failed to converge
	// within max_iter, after any built-in retry.
	ErrBalancingDivergence = errors.New("hictk: balancing did not converge")

	// ErrCancelled indicates a cooperative shutdown was requested and
	// honored at a pixel-yield boundary.
	ErrCancelled = errors.New("hictk: cancelled")
)

// IOError wraps an underlying disk, HDF5-equivalent, or decompression
// failure. The core never recovers from one locally.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Op == "" {
		return "hictk: io: " + e.Err.Error()
	}
	return "hictk: io: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// Wrap constructs an *IOError, or returns nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}
