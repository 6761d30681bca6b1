package eligibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/garnizeh/citizenhub/internal/catalog"
)

// ErrInvalidProfile wraps every profile validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// Income bracket tags accepted from the profile form.
const (
	IncomeBelow1  = "below-1"
	Income1To2    = "1-2"
	Income2To5    = "2-5"
	Income5To8    = "5-8"
	Income8To10   = "8-10"
	IncomeAbove10 = "above-10"
)

var incomeCeilings = map[string]int64{
	IncomeBelow1:  75000,
	Income1To2:    150000,
	Income2To5:    350000,
	Income5To8:    650000,
	Income8To10:   900000,
	IncomeAbove10: 1200000,
}

// unknownIncome is used for brackets missing from the table.
const unknownIncome = 500000

var (
	genders    = map[string]bool{"male": true, "female": true, "other": true}
	categories = map[string]bool{"General": true, "OBC": true, "SC": true, "ST": true, "EWS": true}
)

// Profile is the citizen-supplied attribute set matched against schemes.
type Profile struct {
	Age        string `json:"age"`
	Income     string `json:"income"`
	Gender     string `json:"gender"`
	State      string `json:"state"`
	Education  string `json:"education,omitempty"`
	Employment string `json:"employment,omitempty"`
	Category   string `json:"category,omitempty"`
	Language   string `json:"language,omitempty"`
}

// Validate checks required fields and enumerations.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Age) == "" || p.Income == "" || p.Gender == "" || strings.TrimSpace(p.State) == "" {
		return fmt.Errorf("%w: age, income, gender and state are required", ErrInvalidProfile)
	}
	if n, ok := p.AgeYears(); !ok || n > 150 {
		return fmt.Errorf("%w: age must be a positive integer", ErrInvalidProfile)
	}
	if _, ok := incomeCeilings[p.Income]; !ok {
		return fmt.Errorf("%w: unknown income bracket %q", ErrInvalidProfile, p.Income)
	}
	if !genders[p.Gender] {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	if p.Category != "" && !categories[p.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProfile, p.Category)
	}
	if p.Language != "" {
		if _, ok := catalog.LookupLanguage(p.Language); !ok {
			return fmt.Errorf("%w: unsupported language %q", ErrInvalidProfile, p.Language)
		}
	}
	return nil
}

// AgeYears parses the age. ok is false unless it is a positive integer.
func (p Profile) AgeYears() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(p.Age))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IncomeValue maps an income bracket to its representative annual income.
func IncomeValue(bracket string) int64 {
	if v, ok := incomeCeilings[bracket]; ok {
		return v
	}
	return unknownIncome
}

// FormatINR renders n with Indian digit grouping, e.g. 1200000 -> "12,00,000".
func FormatINR(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}
