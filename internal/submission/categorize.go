package submission

import "strings"

// categoryKeywords maps each Category to the English-language terms its
// stories tend to use, since classification runs over the English titles
// and summaries this pipeline produces while the category labels themselves
// stay in their original form.
var categoryKeywords = map[Category][]string{
	CategoryEconomy:     {"inflation", "cpi", "gdp", "unemployment", "economic growth", "recession"},
	CategoryMarkets:     {"stocks", "shares", "index", "equities", "bond", "yield", "nasdaq", "s&p", "dow"},
	CategoryPolitics:    {"election", "parliament", "congress", "president", "policy", "legislation"},
	CategoryGeopolitics: {"sanctions", "war", "conflict", "tariff", "trade war", "geopolitical"},
	CategoryTechnology:  {"ai", "chip", "semiconductor", "software", "technology", "startup"},
	CategoryEnergy:      {"oil", "opec", "gas", "crude", "energy", "barrel"},
	CategoryClimate:     {"climate", "emissions", "renewable", "carbon", "drought", "flood"},
}

// ClassifyCategories matches title and summary against each Category's
// keyword set and returns every Category with at least one hit, in the
// fixed declaration order above. A story matching nothing gets no
// categories; downstream treats an empty list as "uncategorized".
func ClassifyCategories(title, summary string) []Category {
	haystack := strings.ToLower(title + " " + summary)

	var matched []Category
	for _, cat := range []Category{
		CategoryEconomy, CategoryMarkets, CategoryPolitics, CategoryGeopolitics,
		CategoryTechnology, CategoryEnergy, CategoryClimate,
	} {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(haystack, kw) {
				matched = append(matched, cat)
				break
			}
		}
	}
	return matched
}
