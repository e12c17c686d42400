package asset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/hashstatic/internal/hasher"
)

// Name is the filename of a fingerprinted asset: {Stem}_{Fingerprint}.{Ext}.
type Name struct {
	Stem        string
	Fingerprint string
	Ext         string
}

// String composes the filename.
func (n Name) String() string {
	return n.Stem + "_" + n.Fingerprint + "." + n.Ext
}

// SplitName splits the last element of filename into stem and extension.
// The extension is everything after the last dot, so "app.min.js" yields
// ("app.min", "js"). Dotfiles such as ".js" have no extension.
func SplitName(filename string) (stem, ext string, err error) {
	base := filepath.Base(filename)
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", "", fmt.Errorf("%w: %q", ErrNoStem, filename)
	}

	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrNoExtension, filename)
	}
	return base[:i], base[i+1:], nil
}

// ParseFingerprinted reports whether filename already has the shape
// {stem}_{fingerprint}.{ext} and returns its parts.
// It does not check the fingerprint against any content.
func ParseFingerprinted(filename string) (Name, bool) {
	stem, ext, err := SplitName(filename)
	if err != nil {
		return Name{}, false
	}
	i := strings.LastIndex(stem, "_")
	if i <= 0 {
		return Name{}, false
	}
	fp := stem[i+1:]
	if !hasher.IsFingerprint(fp) {
		return Name{}, false
	}
	return Name{Stem: stem[:i], Fingerprint: fp, Ext: ext}, true
}
