// Package seqerr defines the error taxonomy shared by every component of
// seqcore: the codec, the matchers, the Aho-Corasick trie, the pairwise
// aligner, and the ranges utilities report their classified failures
// through the types declared here, wrapped with github.com/pkg/errors so
// call sites get stack context for free. A few malformed-argument and
// corrupt-snapshot errors in actree are plain github.com/pkg/errors
// messages instead.
//
// Capacity and alphabet errors are ordinary returned errors. Cancellation
// is cooperative (see the align package). Invariant violations are bugs:
// Invariant panics rather than returning an error, since a caller cannot
// usefully recover from a broken internal invariant.
package seqerr

import (
	"fmt"

	baseerrors "github.com/grailbio/base/errors"
	"github.com/pkg/errors"
)

// AlphabetError reports a byte that has no code in the active ByteCodec.
type AlphabetError struct {
	Offset int
	Byte   byte
}

func (e *AlphabetError) Error() string {
	return fmt.Sprintf("seqerr: byte %q at offset %d is not in the alphabet", e.Byte, e.Offset)
}

// NewAlphabetError wraps an AlphabetError with stack context.
func NewAlphabetError(offset int, b byte) error {
	return errors.WithStack(&AlphabetError{Offset: offset, Byte: b})
}

// NonBaseInTrustedBand reports a non-ACGT letter inside the constant-width
// band a dictionary pattern was cropped to.
type NonBaseInTrustedBand struct {
	PatternID int
}

func (e *NonBaseInTrustedBand) Error() string {
	return fmt.Sprintf("seqerr: pattern %d contains a non-base letter in its trusted band", e.PatternID)
}

// NewNonBaseInTrustedBand constructs the error above.
func NewNonBaseInTrustedBand(patternID int) error {
	return errors.WithStack(&NonBaseInTrustedBand{PatternID: patternID})
}

// KeyNotInLookupTable reports an unrecognized lookup key, e.g. an unknown
// IUPAC ambiguity code or IUPAC->base mapping.
type KeyNotInLookupTable struct {
	Byte byte
}

func (e *KeyNotInLookupTable) Error() string {
	return fmt.Sprintf("seqerr: key %q is not present in the lookup table", e.Byte)
}

// NewKeyNotInLookupTable constructs the error above.
func NewKeyNotInLookupTable(b byte) error {
	return errors.WithStack(&KeyNotInLookupTable{Byte: b})
}

// ViewOutOfBounds reports a matcher or scanner view that extends past the
// end of its backing subject.
type ViewOutOfBounds struct {
	ViewStart, ViewWidth int
	SubjectLength        int
}

func (e *ViewOutOfBounds) Error() string {
	return fmt.Sprintf("seqerr: view [%d, %d) is out of bounds for a subject of length %d",
		e.ViewStart, e.ViewStart+e.ViewWidth, e.SubjectLength)
}

// NewViewOutOfBounds constructs the error above.
func NewViewOutOfBounds(start, width, subjectLength int) error {
	return errors.WithStack(&ViewOutOfBounds{ViewStart: start, ViewWidth: width, SubjectLength: subjectLength})
}

// EmptyPattern reports an empty pattern passed to an operation that
// requires at least one byte.
var EmptyPattern = errors.New("seqerr: pattern must not be empty")

// EmptySubject reports an empty subject passed to an operation that
// requires at least one byte.
var EmptySubject = errors.New("seqerr: subject must not be empty")

// InconsistentWidth reports a dictionary whose patterns are not all the
// same width, where a constant width is required.
type InconsistentWidth struct {
	PatternOffset int
}

func (e *InconsistentWidth) Error() string {
	return fmt.Sprintf("seqerr: pattern at offset %d does not match the dictionary's constant width", e.PatternOffset)
}

// NewInconsistentWidth constructs the error above.
func NewInconsistentWidth(patternOffset int) error {
	return errors.WithStack(&InconsistentWidth{PatternOffset: patternOffset})
}

// InputTooShort reports an input sequence shorter than a cropping
// operation requires.
type InputTooShort struct {
	PatternOffset int
	Required      int
}

func (e *InputTooShort) Error() string {
	return fmt.Sprintf("seqerr: pattern at offset %d is shorter than the required %d bases", e.PatternOffset, e.Required)
}

// NewInputTooShort constructs the error above.
func NewInputTooShort(patternOffset, required int) error {
	return errors.WithStack(&InputTooShort{PatternOffset: patternOffset, Required: required})
}

// NarrowingUnderflow reports a narrow() request that does not fit a given
// range: the resulting width would be negative, or the requested window
// would start before or end after the range.
type NarrowingUnderflow struct {
	Index int
}

func (e *NarrowingUnderflow) Error() string {
	return fmt.Sprintf("seqerr: narrowing range %d produces a negative width", e.Index)
}

// NewNarrowingUnderflow constructs the error above.
func NewNarrowingUnderflow(index int) error {
	return errors.WithStack(&NarrowingUnderflow{Index: index})
}

// InvalidRangeSpec reports a malformed (start, end, width) narrowing
// request: a zero start/end, a negative width, both or neither of
// start/end given alongside a width, or a start/end combination that
// cannot describe a valid range.
type InvalidRangeSpec struct {
	Reason string
}

func (e *InvalidRangeSpec) Error() string {
	return "seqerr: invalid range spec: " + e.Reason
}

// NewInvalidRangeSpec constructs the error above.
func NewInvalidRangeSpec(reason string) error {
	return errors.WithStack(&InvalidRangeSpec{Reason: reason})
}

// Capacity errors: the trie arenas, or a dictionary/pattern, are too
// large for the packed node encoding.
var (
	// DictionaryTooLarge reports a dictionary with more patterns than a
	// pattern id (30 bits) can address.
	DictionaryTooLarge = errors.New("seqerr: dictionary has more patterns than the pattern-id field can hold")
	// WidthTooLarge reports a pattern width exceeding the maximum trie
	// depth (2^28-1).
	WidthTooLarge = errors.New("seqerr: pattern width exceeds the maximum trie depth")
	// NodeArenaExhausted reports the node arena hitting its 32-bit capacity.
	NodeArenaExhausted = errors.New("seqerr: ACTree node arena is exhausted")
	// ExtensionArenaExhausted reports the extension arena hitting its 32-bit capacity.
	ExtensionArenaExhausted = errors.New("seqerr: ACTree extension arena is exhausted")
)

// Cancelled is returned from a cooperative checkpoint when the caller's
// context has been cancelled.
var Cancelled = errors.New("seqerr: operation cancelled")

// Invariant panics to report an internal invariant violation: this class
// of error is a bug and must not be caught by normal error-handling
// paths.
func Invariant(component, message string) {
	panic(baseerrors.E("invariant violation", component, message))
}
