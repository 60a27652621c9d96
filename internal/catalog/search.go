package catalog

import "strings"

var turkishFolder = strings.NewReplacer(
	"ı", "i",
	"ç", "c",
	"ş", "s",
	"ğ", "g",
	"ü", "u",
	"ö", "o",
	"İ", "i",
	"Ç", "c",
	"Ş", "s",
	"Ğ", "g",
	"Ü", "u",
	"Ö", "o",
)

// foldText strips Turkish diacritics and lowercases, so that "şişe" matches a
// query typed as "sise". The fold runs before lowercasing because "İ"
// lowercases to a combining sequence the replacer would miss.
func foldText(text string) string {
	return strings.ToLower(turkishFolder.Replace(text))
}

// matchesQuery reports whether the product's name or stock code contains the
// folded query.
func matchesQuery(p Product, query string) bool {
	if query == "" {
		return true
	}
	folded := foldText(query)
	return strings.Contains(foldText(p.Name), folded) || strings.Contains(foldText(p.StockCode), folded)
}
