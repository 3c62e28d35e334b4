package actions

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// Match is a substring located in the scanned text. Start and End are byte
// offsets, End exclusive.
type Match struct {
	Text  string
	Start int
	End   int
}

// Matcher finds actionable substrings in text. Implementations return
// non-overlapping matches in order of appearance.
type Matcher interface {
	FindPhoneNumbers(text string) []Match
	FindURLs(text string) []Match
}

// phonePattern follows the loose phone grammar used by mobile platforms:
// optional +country, optional (area), then digits with - . or space
// separators, starting and ending on a digit.
var phonePattern = regexp.MustCompile(`(\+[0-9]+[\- .]*)?(\([0-9]+\)[\- .]*)?([0-9][0-9\- .]+[0-9])`)

// PatternMatcher is the default Matcher. Phone numbers use phonePattern;
// URLs use xurls' relaxed matcher, which also finds bare hosts such as
// "example.com".
type PatternMatcher struct {
	phone *regexp.Regexp
	url   *regexp.Regexp
}

// NewPatternMatcher returns the default Matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{
		phone: phonePattern,
		url:   xurls.Relaxed(),
	}
}

// FindPhoneNumbers implements Matcher.
func (m *PatternMatcher) FindPhoneNumbers(text string) []Match {
	return findAll(m.phone, text)
}

// FindURLs implements Matcher. Scheme-less matches containing "@" are
// email addresses and are left to the copy action.
func (m *PatternMatcher) FindURLs(text string) []Match {
	matches := findAll(m.url, text)
	kept := matches[:0]
	for _, match := range matches {
		if !hasScheme(match.Text) && strings.Contains(match.Text, "@") {
			continue
		}
		kept = append(kept, match)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func findAll(re *regexp.Regexp, text string) []Match {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}
