// Package extraction turns raw model-card text into candidate risk
// statements. Extraction is deterministic and never fails on malformed
// input; regions that cannot be parsed simply yield no candidates.
package extraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

const (
	minSectionLen      = 20
	minCandidateLen    = 30
	minStatementLen    = 20
	fallbackPrefixSize = 500
)

// Statement is a single normalized risk disclosure. Category and Relevance
// are attached downstream by the classifier.
type Statement struct {
	Raw        string
	Text       string
	Section    string
	Category   taxonomy.Category
	Relevance  float64
	Classified bool
}

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)#+\s*(?:risks?|limitations?|biases?|ethical\s+considerations?|known\s+issues?)`),
	regexp.MustCompile(`(?im)#+\s*(?:out-of-scope\s+use|misuse|intended\s+use)`),
	regexp.MustCompile(`(?im)\*\*(?:risks?|limitations?|biases?)\*\*`),
}

var (
	nextHeadingRe = regexp.MustCompile(`\n#+\s`)
	bulletSplitRe = regexp.MustCompile(`\n\s*[-*•]\s*|\n\s*\d+\.\s*`)
	emphasisRe    = regexp.MustCompile(`\*+`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// riskKeywords gates candidate lines: a bullet is only kept when at least one
// of these terms appears in it.
var riskKeywords = []string{
	"bias", "biased", "discriminat", "toxic", "harmful", "hallucin",
	"misinformation", "false", "incorrect", "privacy", "security",
	"malicious", "misuse", "unsafe", "danger", "risk", "limitation",
	"fail", "error", "inaccura", "unreliab",
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Sections returns the bodies of risk-adjacent sections in document order.
func (e *Extractor) Sections(text string) []string {
	type match struct{ start, end int }
	var headings []match

	for _, pattern := range sectionPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			headings = append(headings, match{start: loc[0], end: loc[1]})
		}
	}

	sort.Slice(headings, func(i, j int) bool { return headings[i].start < headings[j].start })

	var sections []string
	lastStart := -1
	for _, h := range headings {
		if h.start == lastStart {
			continue
		}
		lastStart = h.start

		body := text[h.end:]
		if next := nextHeadingRe.FindStringIndex(body); next != nil {
			body = body[:next[0]]
		}
		body = strings.TrimSpace(body)
		if len(body) > minSectionLen {
			sections = append(sections, body)
		}
	}

	return sections
}

// Statements extracts normalized risk statements from a document, ordered by
// section position and then by position within the section.
func (e *Extractor) Statements(text string) []Statement {
	var statements []Statement
	for _, section := range e.Sections(text) {
		statements = append(statements, e.parseSection(section)...)
	}
	return statements
}

func (e *Extractor) parseSection(section string) []Statement {
	var statements []Statement

	for _, line := range bulletSplitRe.Split(section, -1) {
		// The first fragment keeps its bullet marker when the section opens
		// with a list.
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if len(line) <= minCandidateLen || strings.HasPrefix(line, "#") {
			continue
		}
		if !containsRiskKeyword(line) {
			continue
		}
		if normalized, ok := Normalize(line); ok {
			statements = append(statements, Statement{
				Raw:     line,
				Text:    normalized,
				Section: section,
			})
		}
	}

	// Sections without usable bullets still get one candidate from their
	// opening text.
	if len(statements) == 0 && len(section) > minCandidateLen {
		prefix := section
		if len(prefix) > fallbackPrefixSize {
			prefix = prefix[:fallbackPrefixSize]
		}
		if normalized, ok := Normalize(prefix); ok {
			statements = append(statements, Statement{
				Raw:     prefix,
				Text:    normalized,
				Section: section,
			})
		}
	}

	return statements
}

func containsRiskKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Normalize cleans a raw candidate into statement form: markdown stripped,
// links reduced to display text, whitespace collapsed, leading filler
// ("the model ...", "this model ...", "it ...") removed and the first letter
// capitalized. Candidates that end up shorter than 20 characters are
// rejected.
func Normalize(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = emphasisRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = stripLeadingFiller(text)

	if text != "" {
		runes := []rune(text)
		runes[0] = unicode.ToUpper(runes[0])
		text = string(runes)
	}

	if len(text) <= minStatementLen {
		return "", false
	}
	return text, true
}

func stripLeadingFiller(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "the model "):
		return text[len("the model "):]
	case strings.HasPrefix(lower, "this model "):
		return text[len("this model "):]
	case strings.HasPrefix(lower, "it "):
		return text[len("it "):]
	}
	return text
}
