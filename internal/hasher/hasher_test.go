package hasher

import (
	"errors"
	"strings"
	"testing"
)

// TestXXH32KnownVectors checks the default hasher against published xxHash32
// values for seed 0.
func TestXXH32KnownVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  uint32
	}{
		{name: "empty input", input: "", want: 0x02cc5d05},
		{name: "abc", input: "abc", want: 0x32d153ff},
	}

	h := NewXXH32()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := h.Sum32([]byte(tt.input)); got != tt.want {
				t.Errorf("Sum32(%q) = %#08x, want %#08x", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashersAreDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte("console.log(1)")
	for _, h := range []Hasher{NewXXH32(), SHA3{}} {
		t.Run(h.Name(), func(t *testing.T) {
			t.Parallel()
			first := h.Sum32(data)
			second := h.Sum32(append([]byte(nil), data...))
			if first != second {
				t.Errorf("digest changed between calls: %#x != %#x", first, second)
			}
		})
	}
}

func TestHashersAreOrderSensitive(t *testing.T) {
	t.Parallel()

	for _, h := range []Hasher{NewXXH32(), SHA3{}} {
		t.Run(h.Name(), func(t *testing.T) {
			t.Parallel()
			if h.Sum32([]byte("ab")) == h.Sum32([]byte("ba")) {
				t.Error("expected different digests for reordered input")
			}
		})
	}
}

func TestXXH32SeedChangesDigest(t *testing.T) {
	t.Parallel()

	data := []byte("body { margin: 0 }")
	if (XXH32{Seed: 0}).Sum32(data) == (XXH32{Seed: 1}).Sum32(data) {
		t.Error("expected seed to change the digest")
	}
}

func TestHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sum  uint32
		want string
	}{
		{sum: 0, want: "00000000"},
		{sum: 0xabc, want: "00000abc"},
		{sum: 0xdeadbeef, want: "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			got := Hex(tt.sum)
			if got != tt.want {
				t.Errorf("Hex(%#x) = %q, want %q", tt.sum, got, tt.want)
			}
			if len(got) != HexLen {
				t.Errorf("expected width %d, got %d", HexLen, len(got))
			}
		})
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	t.Run("empty name selects default", func(t *testing.T) {
		t.Parallel()
		h, err := ByName("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Name() != DefaultAlgorithm {
			t.Errorf("expected %q, got %q", DefaultAlgorithm, h.Name())
		}
	})

	t.Run("names are case-insensitive", func(t *testing.T) {
		t.Parallel()
		h, err := ByName("SHA3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Name() != AlgorithmSHA3 {
			t.Errorf("expected %q, got %q", AlgorithmSHA3, h.Name())
		}
	})

	t.Run("unknown name returns ErrUnknownAlgorithm", func(t *testing.T) {
		t.Parallel()
		_, err := ByName("md5")
		if !errors.Is(err, ErrUnknownAlgorithm) {
			t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
		}
		if !strings.Contains(err.Error(), "md5") {
			t.Errorf("expected error to name the algorithm, got %q", err)
		}
	})
}

func TestIsFingerprint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "0a1b2c3d", want: true},
		{in: Fingerprint(NewXXH32(), []byte("x")), want: true},
		{in: "0A1B2C3D", want: false},
		{in: "0a1b2c3", want: false},
		{in: "0a1b2c3d4", want: false},
		{in: "zzzzzzzz", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := IsFingerprint(tt.in); got != tt.want {
			t.Errorf("IsFingerprint(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
