package classifier

// KeywordSet binds a category to the tokens that vote for it.
type KeywordSet struct {
	Category Category
	Summary  string
	Words    []string
}

// defaultKeywordSets is listed in tie-break priority order.
var defaultKeywordSets = []KeywordSet{
	{
		Category: CategoryMedical,
		Summary:  "Medical Info",
		Words:    []string{"mg", "dosage", "pill", "doctor", "pharmacy"},
	},
	{
		Category: CategoryFinancial,
		Summary:  "Financial Doc",
		Words:    []string{"total", "amount", "tax", "invoice", "bank"},
	},
	{
		Category: CategoryTechnical,
		Summary:  "Code / Script",
		Words:    []string{"function", "val", "var", "import", "code", "class"},
	},
	{
		Category: CategoryDining,
		Summary:  "Menu Item",
		Words:    []string{"menu", "starter", "veg", "chicken", "served"},
	},
}

var defaultHazardTerms = []string{"danger", "warning", "poison"}

// DefaultKeywordSets returns a copy of the built-in keyword table.
// Earlier entries win ties.
func DefaultKeywordSets() []KeywordSet {
	sets := make([]KeywordSet, len(defaultKeywordSets))
	for i, set := range defaultKeywordSets {
		sets[i] = KeywordSet{
			Category: set.Category,
			Summary:  set.Summary,
			Words:    append([]string(nil), set.Words...),
		}
	}
	return sets
}

// DefaultHazardTerms returns a copy of the substrings that raise a safety alert.
func DefaultHazardTerms() []string {
	return append([]string(nil), defaultHazardTerms...)
}
