// Package advisor produces long-form scheme guidance and translations through
// the completion backend, with fixed text when the backend is unavailable.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

var detailsTemplate = template.Must(template.New("details").Parse(`
{{.LanguageInstruction}}

Provide comprehensive and VERY CLEAR information about the "{{.Title}}" government scheme in India. Structure your response as follows:

## 📋 SCHEME OVERVIEW
- What is this scheme about?
- Who launched it and when?
- Main objectives

## ✅ DETAILED ELIGIBILITY CRITERIA
- Age requirements (if any)
- Income limits (specify exact amounts)
- Educational qualifications needed
- Gender/category requirements
- State/region specific criteria
- Any other specific conditions

## 💰 FINANCIAL BENEFITS
- Exact amount of money/benefits
- How the money is disbursed
- Payment schedule/frequency
- Any additional benefits

## 📝 STEP-BY-STEP APPLICATION PROCESS
1. First step (be very specific)
2. Second step (include where to go/what website)
3. Third step (mention documents needed)
4. Continue with all steps...
5. Final step (what happens after approval)

## 📄 REQUIRED DOCUMENTS CHECKLIST
- Document 1 (explain why needed)
- Document 2 (explain why needed)
- Continue for all documents...

## ⏰ IMPORTANT DEADLINES & TIMELINES
- Application deadline (if any)
- Processing time
- When benefits start
- Renewal requirements

## 📞 CONTACT INFORMATION & HELP
- Official website URL
- Helpline numbers
- Email addresses
- Local office contacts

## 💡 SUCCESS TIPS
- Best practices for application
- Common mistakes to avoid
- How to track application status

## ⚠️ IMPORTANT WARNINGS
- Fraud prevention tips
- What to watch out for
- Official vs fake websites

Make the language simple and easy to understand for common citizens. Use bullet points and clear formatting.
`))

var translateTemplate = template.Must(template.New("translate").Parse(`
Translate the following government scheme information to {{.Language}} language.
Maintain the same structure and formatting.
Make sure technical terms are properly translated but keep official scheme names in English with local translation in brackets.

Original text:
{{.Text}}

Provide the complete translation in {{.Language}}:
`))

var unavailableTemplate = template.Must(template.New("unavailable").Parse(`## ⚠️ Information Currently Unavailable

Detailed information about **{{.Title}}** is temporarily unavailable in {{.Language}}.

### 🔗 Alternative Resources:
- **Official Portal**: india.gov.in
- **Citizen Helpline**: 1800-11-1111
- **Email Support**: support@gov.in

### 📋 General Application Tips:
1. **Verify Eligibility**: Check all criteria carefully
2. **Prepare Documents**: Keep all required papers ready
3. **Official Channels**: Apply only through government websites
4. **Avoid Fraud**: Never pay money for government scheme applications
5. **Track Status**: Save your application reference number

### 🏛️ Visit Local Offices:
- District Collector Office
- Block Development Office
- Common Service Centers (CSC)

Please contact the relevant ministry or visit official government portals for accurate and up-to-date information about this scheme.`))

// Advisor is safe for concurrent use.
type Advisor struct {
	completer completion.Completer
	timeout   time.Duration
	logger    *slog.Logger
}

func New(c completion.Completer, timeout time.Duration, logger *slog.Logger) *Advisor {
	if c == nil {
		c = completion.Disabled{}
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{completer: c, timeout: timeout, logger: logger}
}

// Details returns structured markdown guidance about a scheme in language.
// When the backend fails it returns fixed text pointing at official resources.
func (a *Advisor) Details(ctx context.Context, title, language string) string {
	instruction := "Provide the response in clear, simple English."
	if language != "" && language != catalog.DefaultLanguage {
		instruction = fmt.Sprintf("Provide the complete response in %s language. Translate all information including technical terms, procedures, and requirements.", catalog.LanguageName(language))
	}

	out, err := a.complete(ctx, detailsTemplate, map[string]string{"LanguageInstruction": instruction, "Title": title})
	if err != nil {
		a.logger.Warn("advisor: scheme details unavailable", slog.String("title", title), slog.Any("error", err))
		return Unavailable(title, language)
	}
	return out
}

// Translate returns text in language. English and any failure return text unchanged.
func (a *Advisor) Translate(ctx context.Context, text, language string) string {
	if language == "" || language == catalog.DefaultLanguage || strings.TrimSpace(text) == "" {
		return text
	}

	out, err := a.complete(ctx, translateTemplate, map[string]string{"Language": catalog.LanguageName(language), "Text": text})
	if err != nil {
		a.logger.Warn("advisor: translation failed, returning original", slog.String("language", language), slog.Any("error", err))
		return text
	}
	return out
}

// Unavailable renders the degraded-mode details text.
func Unavailable(title, language string) string {
	name := "English"
	if language != "" && language != catalog.DefaultLanguage {
		name = catalog.LanguageName(language)
	}
	out, err := completion.RenderTemplate(unavailableTemplate, map[string]string{"Title": title, "Language": name})
	if err != nil {
		return "Information Currently Unavailable"
	}
	return out
}

func (a *Advisor) complete(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	prompt, err := completion.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	ctxReq, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.completer.Complete(ctxReq, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", completion.ErrNoCandidates
	}
	return out, nil
}
