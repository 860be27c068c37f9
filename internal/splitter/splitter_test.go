package splitter

import (
	"fmt"
	"strings"
	"testing"
)

// reconstruct joins fragments back together, removing the duplicated
// whole-unit overlap between consecutive fragments.
func reconstruct(fragments []string, sep string) string {
	if len(fragments) == 0 {
		return ""
	}

	result := fragments[0]
	for _, frag := range fragments[1:] {
		prevUnits := strings.Split(result, sep)
		nextUnits := strings.Split(frag, sep)

		// Longest whole-unit suffix of result that prefixes frag.
		max := len(nextUnits)
		if len(prevUnits) < max {
			max = len(prevUnits)
		}
		overlap := 0
		for n := max; n > 0; n-- {
			suffix := strings.Join(prevUnits[len(prevUnits)-n:], sep)
			prefix := strings.Join(nextUnits[:n], sep)
			if suffix == prefix {
				overlap = n
				break
			}
		}

		rest := strings.Join(nextUnits[overlap:], sep)
		if rest != "" {
			result = result + sep + rest
		}
	}
	return result
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, s.overlap)
		}
		if s.separator != DefaultSeparator {
			t.Errorf("expected separator %q, got %q", DefaultSeparator, s.separator)
		}
	})

	t.Run("custom options", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(50), WithSeparator(" "))
		if s.chunkSize != 500 || s.overlap != 50 || s.separator != " " {
			t.Errorf("options not applied: %+v", s)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1), WithSeparator(""))
		if s.chunkSize != DefaultChunkSize || s.overlap != DefaultOverlap || s.separator != DefaultSeparator {
			t.Errorf("expected defaults, got %+v", s)
		}
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	s := New()
	if got := s.SplitAll(""); len(got) != 0 {
		t.Errorf("expected empty sequence for empty input, got %d fragments", len(got))
	}
}

func TestSplit_ShortInput(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	got := s.SplitAll("short text")

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 fragment, got %d", len(got))
	}
	if got[0] != "short text" {
		t.Errorf("expected fragment to equal input, got %q", got[0])
	}
}

func TestSplit_OverlapScenario(t *testing.T) {
	// Chunk size forces two groups; overlap budget holds one unit.
	s := New(WithChunkSize(5), WithOverlap(1), WithSeparator("\n"))
	got := s.SplitAll("a\nb\nc\nd\ne")

	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d: %v", len(got), got)
	}
	if got[0] != "a\nb\nc" {
		t.Errorf("unexpected first fragment %q", got[0])
	}
	if got[1] != "c\nd\ne" {
		t.Errorf("unexpected second fragment %q", got[1])
	}

	// The last unit of group 1 reappears as the first unit of group 2.
	lastOfFirst := strings.Split(got[0], "\n")
	firstOfSecond := strings.Split(got[1], "\n")
	if lastOfFirst[len(lastOfFirst)-1] != firstOfSecond[0] {
		t.Error("expected trailing unit of first fragment to lead the second")
	}
}

func TestSplit_LosslessReconstruction(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		sep       string
	}{
		{"lines", "alpha\nbravo\ncharlie\ndelta\necho\nfoxtrot\ngolf", 14, 6, "\n"},
		{"words", "one two three four five six seven eight nine ten", 12, 4, " "},
		{"no overlap", "aa\nbb\ncc\ndd\nee", 5, 0, "\n"},
		{"single unit", "just-one-unit", 5, 2, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithChunkSize(tt.chunkSize), WithOverlap(tt.overlap), WithSeparator(tt.sep))
			frags := s.SplitAll(tt.text)

			if got := reconstruct(frags, tt.sep); got != tt.text {
				t.Errorf("reconstruction mismatch:\n got %q\nwant %q\nfragments: %v", got, tt.text, frags)
			}
		})
	}
}

func TestSplit_OversizedUnit(t *testing.T) {
	// A unit larger than the chunk size becomes a fragment on its own;
	// splitting still terminates.
	s := New(WithChunkSize(4), WithOverlap(1), WithSeparator("\n"))
	got := s.SplitAll("x\nthis-unit-is-far-too-long\ny")

	if len(got) == 0 {
		t.Fatal("expected fragments")
	}
	found := false
	for _, f := range got {
		if strings.Contains(f, "this-unit-is-far-too-long") {
			found = true
		}
	}
	if !found {
		t.Error("expected oversized unit to be preserved in some fragment")
	}
}

func TestSplit_Restartable(t *testing.T) {
	s := New(WithChunkSize(5), WithOverlap(1), WithSeparator("\n"))
	seq := s.Split("a\nb\nc\nd\ne")

	first := make([]string, 0)
	for f := range seq {
		first = append(first, f)
	}
	second := make([]string, 0)
	for f := range seq {
		second = append(second, f)
	}

	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("expected restarted sequence to repeat: %v vs %v", first, second)
	}
}

func TestSplit_EarlyBreak(t *testing.T) {
	s := New(WithChunkSize(5), WithOverlap(1), WithSeparator("\n"))

	count := 0
	for range s.Split("a\nb\nc\nd\ne\nf\ng\nh") {
		count++
		if count == 1 {
			break
		}
	}
	if count != 1 {
		t.Errorf("expected consumption to stop after break, got %d", count)
	}
}
