package eligibility

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

var promptTemplate = template.Must(template.New("eligibility").Parse(`
You are a smart assistant for filtering government schemes in India. {{.LanguageInstruction}}

Given the following user details:
- Age: {{.Age}} years
- Gender: {{.Gender}}
- Annual Family Income: ₹{{.Income}}
- State: {{.State}}
- Education: {{.Education}}
- Employment: {{.Employment}}
- Category: {{.Category}}

TASK: Filter the following JSON list of schemes and return ONLY the ones the user is DEFINITELY eligible for based on the eligibility criteria.

IMPORTANT INSTRUCTIONS:
1. Be VERY STRICT with eligibility matching
2. Check age ranges carefully (e.g., "Age 18-25" means user must be between 18 and 25)
3. Check income limits precisely (e.g., "Family income < ₹8 lakh" means income must be less than 800,000)
4. Consider gender-specific schemes (e.g., women-only schemes)
5. Consider category-specific schemes (SC/ST/OBC requirements)
6. If user doesn't meet ANY criteria of a scheme, exclude it completely
7. Return schemes in order of relevance (most relevant first)
8. {{.LanguageInstruction}}

Return ONLY the valid filtered JSON array without any extra text, explanations, or markdown formatting.

### Scheme List:
{{.Catalog}}

### Expected Output Format:
[
  {
    "id": "...",
    "title": "...",
    "description": "...",
    "amount": "...",
    "deadline": "...",
    "category": "...",
    "eligibility": [...],
    "benefits": [...],
    "applicationSteps": [...],
    "isNew": boolean,
    "isUrgent": boolean,
    "applied": number,
    "slots": number,
    "ministry": "..."
  }
]
`))

type promptData struct {
	LanguageInstruction string
	Age                 int
	Gender              string
	Income              string
	State               string
	Education           string
	Employment          string
	Category            string
	Catalog             string
}

// LanguageInstruction tells the model which language to answer in.
func LanguageInstruction(language string) string {
	if language == "" || language == catalog.DefaultLanguage {
		return "Respond in English only."
	}
	return fmt.Sprintf("Respond in %s language. Translate all scheme information, eligibility criteria, and descriptions to this language.", catalog.LanguageName(language))
}

// BuildPrompt renders the eligibility prompt for p over schemes.
func BuildPrompt(p Profile, schemes []catalog.Scheme) (string, error) {
	var list strings.Builder
	enc := json.NewEncoder(&list)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schemes); err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	age, _ := p.AgeYears()

	data := promptData{
		LanguageInstruction: LanguageInstruction(p.Language),
		Age:                 age,
		Gender:              p.Gender,
		Income:              FormatINR(IncomeValue(p.Income)),
		State:               p.State,
		Education:           orDefault(p.Education, "Not specified"),
		Employment:          orDefault(p.Employment, "Not specified"),
		Category:            orDefault(p.Category, "General"),
		Catalog:             strings.TrimSpace(list.String()),
	}
	return completion.RenderTemplate(promptTemplate, data)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
