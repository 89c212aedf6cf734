// File: internal/text/words.go

// Package text splits strings into words, shapes them with a FontImpl and
// breaks shaped words into lines around exclusion areas.
package text

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// WordKind classifies a word.
type WordKind uint8

const (
	KindWord WordKind = iota
	KindSpace
	KindReturn
	KindTab
)

func (k WordKind) String() string {
	return [...]string{"word", "space", "return", "tab"}[k]
}

// Word is a byte range of the source string.
type Word struct {
	Kind  WordKind
	Start int
	Len   int
}

// End is the exclusive end offset.
func (w Word) End() int { return w.Start + w.Len }

// Words is the result of splitting one string.
type Words struct {
	Text  string
	Items []Word
}

// Slice returns the source text of item i.
func (w *Words) Slice(i int) string {
	it := w.Items[i]
	return w.Text[it.Start:it.End()]
}

// SplitIntoWords segments s on Unicode word boundaries and classifies each
// segment. Adjacent non-space segments are merged, so a word only breaks at
// whitespace. Concatenating every item reproduces s exactly.
func SplitIntoWords(s string) Words {
	out := Words{Text: s}
	state := -1
	offset := 0
	rest := s
	for len(rest) > 0 {
		var seg string
		seg, rest, state = uniseg.FirstWordInString(rest, state)
		kind := classify(seg)
		if kind == KindWord && len(out.Items) > 0 {
			last := &out.Items[len(out.Items)-1]
			if last.Kind == KindWord && last.End() == offset {
				last.Len += len(seg)
				offset += len(seg)
				continue
			}
		}
		if kind == KindSpace && len(out.Items) > 0 {
			last := &out.Items[len(out.Items)-1]
			if last.Kind == KindSpace && last.End() == offset {
				last.Len += len(seg)
				offset += len(seg)
				continue
			}
		}
		out.Items = append(out.Items, Word{Kind: kind, Start: offset, Len: len(seg)})
		offset += len(seg)
	}
	return out
}

func classify(seg string) WordKind {
	if strings.ContainsAny(seg, "\r\n\u2028\u2029") {
		return KindReturn
	}
	if strings.Trim(seg, "\t") == "" {
		return KindTab
	}
	for _, r := range seg {
		if !isCollapsibleSpace(r) {
			return KindWord
		}
	}
	return KindSpace
}

// isCollapsibleSpace reports breakable whitespace; no-break spaces are word characters.
func isCollapsibleSpace(r rune) bool {
	switch r {
	case '\u00a0', '\u2007', '\u202f':
		return false
	}
	return r != '\t' && unicode.IsSpace(r)
}
