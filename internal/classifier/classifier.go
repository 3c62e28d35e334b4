// Package classifier sorts recognized text into coarse categories.
//
// Each whitespace-separated token of the lower-cased text is looked up in a
// fixed keyword table; the category with the most hits wins, ties go to the
// earlier table entry, and text with no hits is a plain DOCUMENT. Any
// occurrence of a hazard term anywhere in the text overrides the result
// with a HAZARD classification and raises the risk level.
//
// Classification is a pure function of its input. A Classifier is immutable
// after construction and safe for concurrent use.
package classifier

import (
	"fmt"
	"strings"
)

// Category is a coarse label assigned to a block of text.
type Category int

const (
	CategoryDocument Category = iota
	CategoryMedical
	CategoryFinancial
	CategoryTechnical
	CategoryDining
	CategoryHazard
)

var categoryNames = map[Category]string{
	CategoryDocument:  "DOCUMENT",
	CategoryMedical:   "MEDICAL",
	CategoryFinancial: "FINANCIAL",
	CategoryTechnical: "TECHNICAL",
	CategoryDining:    "DINING",
	CategoryHazard:    "HAZARD",
}

var categoryLabels = map[Category]string{
	CategoryDocument:  "📄 DOCUMENT",
	CategoryMedical:   "💊 MEDICAL",
	CategoryFinancial: "💳 FINANCIAL",
	CategoryTechnical: "💻 TECHNICAL",
	CategoryDining:    "🍽️ DINING",
	CategoryHazard:    "⚠️ HAZARD",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Label is the display form of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return c.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("classifier: unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for cat, n := range categoryNames {
		if n == name {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("classifier: unknown category %q", string(text))
}

const (
	documentSummary = "Text Detected"
	hazardSummary   = "SAFETY ALERT"
)

// Risk levels.
const (
	RiskNone   = 0
	RiskHazard = 1
)

// Result is the outcome of classifying one block of text.
type Result struct {
	Category  Category `json:"category"`
	Summary   string   `json:"summary"`
	CleanText string   `json:"clean_text"` // the input, unmodified
	RiskLevel int      `json:"risk_level"`
}

// IsHazard reports whether the text tripped the hazard override.
func (r Result) IsHazard() bool {
	return r.RiskLevel == RiskHazard
}

// Scores holds the per-category token hit counts for a text.
type Scores map[Category]int

// Classifier scores text against a keyword table.
type Classifier struct {
	sets    []KeywordSet
	lookup  map[string][]int // token -> indexes into sets
	hazards []string
}

// New returns a Classifier using the built-in keyword table.
func New() *Classifier {
	return NewWithKeywords(DefaultKeywordSets(), DefaultHazardTerms())
}

// NewWithKeywords builds a Classifier from explicit tables. Sets are
// evaluated in the order given when breaking ties. Words and hazard terms
// are matched case-insensitively.
func NewWithKeywords(sets []KeywordSet, hazards []string) *Classifier {
	c := &Classifier{
		sets:   make([]KeywordSet, len(sets)),
		lookup: make(map[string][]int),
	}
	for i, set := range sets {
		c.sets[i] = KeywordSet{Category: set.Category, Summary: set.Summary}
		seen := make(map[string]bool, len(set.Words))
		for _, w := range set.Words {
			w = strings.ToLower(w)
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			c.sets[i].Words = append(c.sets[i].Words, w)
			c.lookup[w] = append(c.lookup[w], i)
		}
	}
	for _, h := range hazards {
		if h = strings.ToLower(h); h != "" {
			c.hazards = append(c.hazards, h)
		}
	}
	return c
}

// counts returns hits per keyword set, indexed like c.sets.
func (c *Classifier) counts(lowered string) []int {
	counts := make([]int, len(c.sets))
	for _, token := range strings.Fields(lowered) {
		for _, idx := range c.lookup[token] {
			counts[idx]++
		}
	}
	return counts
}

// Scores returns the keyword hit count for every category in the table.
func (c *Classifier) Scores(text string) Scores {
	counts := c.counts(strings.ToLower(text))
	scores := make(Scores, len(c.sets))
	for i, set := range c.sets {
		scores[set.Category] += counts[i]
	}
	return scores
}

// Classify assigns a category, summary and risk level to text.
// Blank text classifies as DOCUMENT; callers that want an idle state
// should check for blank input first.
func (c *Classifier) Classify(text string) Result {
	lowered := strings.ToLower(text)

	result := Result{
		Category:  CategoryDocument,
		Summary:   documentSummary,
		CleanText: text,
		RiskLevel: RiskNone,
	}

	best := 0
	for i, n := range c.counts(lowered) {
		// strict > keeps the earliest set on ties
		if n > best {
			best = n
			result.Category = c.sets[i].Category
			result.Summary = c.sets[i].Summary
		}
	}

	for _, h := range c.hazards {
		if strings.Contains(lowered, h) {
			result.Category = CategoryHazard
			result.Summary = hazardSummary
			result.RiskLevel = RiskHazard
			break
		}
	}

	return result
}

var defaultClassifier = New()

// Classify classifies text with the built-in keyword table.
func Classify(text string) Result {
	return defaultClassifier.Classify(text)
}
