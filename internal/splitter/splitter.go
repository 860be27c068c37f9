// Package splitter breaks document text into overlapping fragments.
//
// Fragments are composed of whole separator-delimited units: a unit is
// never cut in the middle, so the overlap shared between consecutive
// fragments always ends on a unit boundary. Concatenating all fragments
// with the duplicated overlap regions removed reconstructs the input
// losslessly.
package splitter

import (
	"iter"
	"strings"
)

// DefaultChunkSize is the default target fragment size in bytes.
const DefaultChunkSize = 1000

// DefaultOverlap is the default overlap budget in bytes.
const DefaultOverlap = 200

// DefaultSeparator is the default unit delimiter.
const DefaultSeparator = "\n"

// Splitter produces overlapping text fragments.
type Splitter struct {
	chunkSize int
	overlap   int
	separator string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target fragment size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap budget in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparator sets the unit delimiter.
func WithSeparator(sep string) Option {
	return func(s *Splitter) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		separator: DefaultSeparator,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for new content in every fragment.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split returns a lazy sequence of fragments. The sequence is finite
// and restartable: ranging over it again re-splits from the start.
//
// Empty input yields an empty sequence. Input no longer than the target
// size yields exactly one fragment. Otherwise fragments never exceed
// the target size by more than one unit, and consecutive fragments
// share a whole-unit overlap of roughly the configured budget.
func (s *Splitter) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}

		units := strings.Split(text, s.separator)

		var buf []string
		bufLen := 0

		for _, unit := range units {
			joined := bufLen + len(unit)
			if len(buf) > 0 {
				joined += len(s.separator)
			}

			// Emit when the next unit would push the buffer past the
			// target. A single oversized unit still becomes a fragment
			// on its own once the buffer drains.
			if len(buf) > 0 && joined > s.chunkSize {
				if !yield(strings.Join(buf, s.separator)) {
					return
				}
				buf, bufLen = s.overlapSeed(buf)
				joined = bufLen + len(unit)
				if len(buf) > 0 {
					joined += len(s.separator)
				}
			}

			buf = append(buf, unit)
			bufLen = joined
		}

		if len(buf) > 0 {
			yield(strings.Join(buf, s.separator))
		}
	}
}

// SplitAll collects the full fragment sequence into a slice.
func (s *Splitter) SplitAll(text string) []string {
	var fragments []string
	for fragment := range s.Split(text) {
		fragments = append(fragments, fragment)
	}
	return fragments
}

// overlapSeed walks backward through an emitted buffer collecting
// trailing units until the overlap budget is reached. At least one unit
// is kept even when it alone exceeds the budget; forward progress is
// guaranteed because every emitted fragment consumed at least one unit
// beyond its seed.
func (s *Splitter) overlapSeed(buf []string) ([]string, int) {
	if s.overlap == 0 {
		return nil, 0
	}

	seedLen := 0
	i := len(buf) - 1
	for ; i >= 0; i-- {
		add := len(buf[i])
		if seedLen > 0 {
			add += len(s.separator)
		}
		if seedLen > 0 && seedLen >= s.overlap {
			break
		}
		seedLen += add
	}

	seed := make([]string, len(buf)-(i+1))
	copy(seed, buf[i+1:])
	return seed, seedLen
}
