package question

import "github.com/civicprep/civicprep/internal/i18n"

// Category is one of the seven USCIS sub-categories used in question data.
type Category string

const (
	CategoryPrinciples Category = "Principles of American Democracy"
	CategorySystem     Category = "System of Government"
	CategoryRights     Category = "Rights and Responsibilities"
	CategoryColonial   Category = "American History: Colonial Period and Independence"
	Category1800s      Category = "American History: 1800s"
	CategoryRecent     Category = "Recent American History and Other Important Historical Information"
	CategorySymbols    Category = "Civics: Symbols and Holidays"
)

// MainCategory is one of the three USCIS test sections.
type MainCategory string

const (
	MainGovernment MainCategory = "American Government"
	MainHistory    MainCategory = "American History"
	MainCivics     MainCategory = "Integrated Civics"
)

// MainCategoryDef describes a main category and the sub-categories it covers.
type MainCategoryDef struct {
	ID            MainCategory
	Name          i18n.Bilingual
	SubCategories []Category
}

// USCISCategories lists the main categories in display order.
var USCISCategories = []MainCategoryDef{
	{
		ID:   MainGovernment,
		Name: i18n.Bilingual{EN: "American Government", MY: "အမေရိကန်အစိုးရ"},
		SubCategories: []Category{
			CategoryPrinciples,
			CategorySystem,
			CategoryRights,
		},
	},
	{
		ID:   MainHistory,
		Name: i18n.Bilingual{EN: "American History", MY: "အမေရိကန်သမိုင်း"},
		SubCategories: []Category{
			CategoryColonial,
			Category1800s,
			CategoryRecent,
		},
	},
	{
		ID:            MainCivics,
		Name:          i18n.Bilingual{EN: "Integrated Civics", MY: "ပေါင်းစပ်နိုင်ငံသားပညာ"},
		SubCategories: []Category{CategorySymbols},
	},
}

var subCategoryNames = map[Category]i18n.Bilingual{
	CategoryPrinciples: {EN: "Principles of American Democracy", MY: "အမေရိကန်ဒီမိုကရေစီ၏ မူဝါဒများ"},
	CategorySystem:     {EN: "System of Government", MY: "အစိုးရစနစ်"},
	CategoryRights:     {EN: "Rights and Responsibilities", MY: "အခွင့်အရေးများနှင့် တာဝန်များ"},
	CategoryColonial:   {EN: "Colonial Period and Independence", MY: "ကိုလိုနီခေတ်နှင့် လွတ်လပ်ရေး"},
	Category1800s:      {EN: "1800s", MY: "၁၈၀၀ ပြည့်နှစ်များ"},
	CategoryRecent:     {EN: "Recent American History", MY: "မကြာသေးမီ အမေရိကန်သမိုင်း"},
	CategorySymbols:    {EN: "Symbols and Holidays", MY: "သင်္ကေတများနှင့် ပိတ်ရက်များ"},
}

// AllCategories returns the seven sub-categories in display order.
func AllCategories() []Category {
	var out []Category
	for _, def := range USCISCategories {
		out = append(out, def.SubCategories...)
	}
	return out
}

// Valid reports whether c is a known sub-category.
func (c Category) Valid() bool {
	_, ok := subCategoryNames[c]
	return ok
}

// Name returns the short bilingual display name of the sub-category.
func (c Category) Name() i18n.Bilingual {
	if n, ok := subCategoryNames[c]; ok {
		return n
	}
	return i18n.Bilingual{EN: string(c), MY: string(c)}
}

// MainCategoryOf returns the main category a sub-category belongs to.
// Unknown sub-categories fall back to Integrated Civics.
func MainCategoryOf(c Category) MainCategory {
	for _, def := range USCISCategories {
		for _, sub := range def.SubCategories {
			if sub == c {
				return def.ID
			}
		}
	}
	return MainCivics
}

// MainCategoryName returns the bilingual name of a main category.
func MainCategoryName(m MainCategory) i18n.Bilingual {
	for _, def := range USCISCategories {
		if def.ID == m {
			return def.Name
		}
	}
	return i18n.Bilingual{EN: string(m), MY: string(m)}
}

// ParseCategory resolves either a main category or a sub-category name.
// It returns the sub-categories covered by the name, or nil if unknown.
func ParseCategory(name string) []Category {
	for _, def := range USCISCategories {
		if string(def.ID) == name {
			return def.SubCategories
		}
	}
	if c := Category(name); c.Valid() {
		return []Category{c}
	}
	return nil
}
