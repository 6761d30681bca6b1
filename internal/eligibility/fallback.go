package eligibility

import (
	"strings"

	"github.com/garnizeh/citizenhub/internal/catalog"
)

// MaxFallbackSchemes caps the local rule result.
const MaxFallbackSchemes = 6

// Fallback applies the local rule table to schemes in catalog order and
// returns at most MaxFallbackSchemes matches.
func Fallback(p Profile, schemes []catalog.Scheme) []catalog.Scheme {
	age, hasAge := p.AgeYears()
	income := IncomeValue(p.Income)
	selfEmployed := p.Employment == "self-employed"

	out := make([]catalog.Scheme, 0, MaxFallbackSchemes)
	for _, s := range schemes {
		var ok bool
		switch s.Category {
		case catalog.CategoryEducation:
			ok = hasAge && age >= 18 && age <= 25 && income < 800000
		case catalog.CategoryDigitalIndia:
			ok = hasAge && age >= 18 && age <= 35
		case catalog.CategoryWomenChild:
			ok = p.Gender == "female"
		case catalog.CategoryHealthcare:
			ok = income < 1000000
		case catalog.CategoryBusiness:
			ok = hasAge && age >= 18 && (selfEmployed || p.Employment == "unemployed")
		case catalog.CategoryAgriculture:
			ok = selfEmployed || strings.Contains(p.State, "rural")
		case catalog.CategoryHousing:
			ok = income < 1800000
		}
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == MaxFallbackSchemes {
			break
		}
	}
	return out
}
