// Package extract reconstructs a canonical encounter record from the noisy
// free text an OCR service recovers from a scanned CMS-1500 claim form.
//
// Extraction is heuristic, not parsing: each field is declared as an ordered
// chain of regular-expression candidates (a primary pattern and an optional
// fallback), evaluated lazily until one matches. A quorum of required fields
// must match for the extraction to be trusted at all; below quorum the whole
// document is rejected rather than half-filled.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"claimbridge/internal/logger"
	"claimbridge/pkg/models"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	disallowedRune = regexp.MustCompile(`[^A-Za-z0-9\s.,:;#'&$/()-]`)
	dateDelimiter  = regexp.MustCompile(`[/-]`)
)

// Extractor matches a declared list of field specifications against cleaned
// OCR text and shapes the matches into a canonical record. It holds no
// per-document state; one value can serve any number of extractions.
type Extractor struct {
	specs []FieldSpec
	seed  models.Record
	log   zerolog.Logger
}

// New creates an extractor over an explicit spec list (for tests and
// nonstandard form layouts). The seed holds constant fields merged into
// every successful extraction.
func New(specs []FieldSpec, seed models.Record) *Extractor {
	return &Extractor{
		specs: specs,
		seed:  seed,
		log:   logger.WithComponent("extractor"),
	}
}

// NewForm1500 creates an extractor for the standard CMS-1500 claim form.
func NewForm1500() *Extractor {
	return New(Form1500Specs(), form1500Seed())
}

// Extract recovers a canonical record from raw OCR text.
//
// The text is first collapsed to single-spaced, allow-listed characters and
// gated on minimum length and claim-form keywords; both gates reject cheaply
// before any per-field matching. Field specs are then tried in declared
// order, primary pattern before fallback, first match wins. A QuorumError is
// returned when fewer than RequiredQuorum of the required fields matched.
func (e *Extractor) Extract(ocrText string) (models.Record, error) {
	const op = "Extract"

	text := Clean(ocrText)
	if len(text) < MinTextLength {
		return nil, NewExtractionError(op, ErrTextTooShort,
			fmt.Sprintf("cleaned text is %d chars, need %d", len(text), MinTextLength))
	}
	if !hasIdentifyingKeyword(text) {
		return nil, NewExtractionError(op, ErrNotClaimForm, "no identifying keywords found")
	}

	rec := e.seed.Clone()
	matchedRequired := 0
	var missingRequired []string

	for _, spec := range e.specs {
		value, ok := matchSpec(text, spec)
		if ok && spec.Date {
			value, ok = normalizeMatchedDate(value)
		}

		switch {
		case ok:
			rec.Set(spec.Segment, spec.Name, value)
			if spec.Required {
				matchedRequired++
			}
			e.log.Debug().
				Str("field", spec.Name).
				Str("segment", spec.Segment).
				Msg("Field matched")
		case spec.Required:
			missingRequired = append(missingRequired, spec.Name)
			if spec.Default != "" {
				rec.Set(spec.Segment, spec.Name, spec.Default)
			}
			e.log.Debug().
				Str("field", spec.Name).
				Msg("Required field did not match")
		case spec.Default != "":
			rec.Set(spec.Segment, spec.Name, spec.Default)
			e.log.Debug().
				Str("field", spec.Name).
				Str("default", spec.Default).
				Msg("Field did not match, using default")
		}
	}

	if matchedRequired < RequiredQuorum {
		e.log.Warn().
			Int("matched", matchedRequired).
			Int("quorum", RequiredQuorum).
			Strs("missing", missingRequired).
			Msg("Extraction below required-field quorum")
		return nil, &QuorumError{
			Matched: matchedRequired,
			Quorum:  RequiredQuorum,
			Missing: missingRequired,
		}
	}

	e.log.Info().
		Int("matched_required", matchedRequired).
		Int("segments", len(rec)).
		Msg("Extraction completed")
	return rec, nil
}

// Clean collapses whitespace runs to single spaces, strips characters
// outside the allow list and trims the result. Exported because the same
// normalization is useful when logging or previewing raw OCR output.
func Clean(text string) string {
	text = disallowedRune.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func hasIdentifyingKeyword(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range identifyingKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// matchSpec runs the spec's candidate patterns against the text. The value
// is the capture groups joined with "/" (a single group is returned as-is;
// three groups from a full date pattern become "M/D/YYYY"), or the whole
// match for patterns without groups.
func matchSpec(text string, spec FieldSpec) (string, bool) {
	for _, pattern := range []*regexp.Regexp{spec.Primary, spec.Fallback} {
		if pattern == nil {
			continue
		}
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) == 1 {
			return strings.TrimSpace(m[0]), true
		}
		groups := make([]string, 0, len(m)-1)
		for _, g := range m[1:] {
			groups = append(groups, strings.TrimSpace(g))
		}
		return strings.Join(groups, "/"), true
	}
	return "", false
}

// normalizeMatchedDate turns a matched date value into M/D/YYYY and rejects
// years outside the accepted range. Patterns either capture month, day and
// year separately (already joined with "/" by matchSpec) or capture one
// internally delimited token; both paths land here as a delimited string.
func normalizeMatchedDate(value string) (string, bool) {
	parts := dateDelimiter.Split(value, -1)
	if len(parts) != 3 {
		return "", false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < MinAcceptedYear || year > time.Now().Year() {
		return "", false
	}
	return fmt.Sprintf("%s/%s/%s", parts[0], parts[1], parts[2]), true
}
