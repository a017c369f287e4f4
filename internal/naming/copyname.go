package naming

import (
	"regexp"
	"strings"
	"unicode"

	"mediadupfinder/internal/media"
)

// Paren identifies which parenthesis style a copy suffix uses
type Paren int

const (
	HalfWidth Paren = iota + 1 // ()
	FullWidth                  // （）
)

// The two parenthesis styles are literal alternatives; mixed pairs don't match.
var copySuffix = regexp.MustCompile(`^(.*?)(?:\((\d+)\)|（(\d+)）)$`)

// CopyName is a file stem split into its base and numeric copy suffix
type CopyName struct {
	Base   string // everything before the suffix, verbatim
	Number string // the digits inside the parentheses
	Paren  Paren
}

// ParseCopyName recognizes stems of the form "<base>(<n>)" or
// "<base>（<n>）" where n is a positive integer and the parenthesised
// group ends the stem. "photo(v2)" and "photo(1)x" do not match.
func ParseCopyName(stem string) (CopyName, bool) {
	m := copySuffix.FindStringSubmatch(stem)
	if m == nil {
		return CopyName{}, false
	}

	cn := CopyName{Base: m[1], Number: m[2], Paren: HalfWidth}
	if cn.Number == "" {
		cn.Number = m[3]
		cn.Paren = FullWidth
	}
	if strings.TrimLeft(cn.Number, "0") == "" {
		return CopyName{}, false
	}
	return cn, true
}

// IsCopy reports whether a file name (extension included) carries a copy suffix
func IsCopy(name string) bool {
	_, ok := ParseCopyName(media.Stem(name))
	return ok
}

// OriginNames lists the file names the origin of this copy may have, in
// lookup order: the base verbatim, then the base with trailing
// whitespace removed ("sunset (1)" -> "sunset").
func (cn CopyName) OriginNames(ext string) []string {
	names := []string{cn.Base + ext}
	if trimmed := strings.TrimRightFunc(cn.Base, unicode.IsSpace); trimmed != cn.Base && trimmed != "" {
		names = append(names, trimmed+ext)
	}
	return names
}
