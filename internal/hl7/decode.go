package hl7

import (
	"strings"

	"claimbridge/pkg/models"
)

// Decode parses wire message text into a canonical record.
//
// Lines are split on segment terminators (\r\n, \r and \n all occur in the
// wild); blank lines are dropped. Within a line the first token is the
// segment type, so split index 0 corresponds to wire position 1. Field
// values are stored raw: transforms are an encode-time concern and decoded
// date fields stay in wire form.
//
// Repeating segment types key each instance by the type code suffixed with
// its set identifier value; an absent identifier, or one equal to the
// type's zero sentinel, leaves the suffix empty. When two lines produce the
// same segment key the later line's field map replaces the earlier one.
//
// A bare type token is a valid segment with an empty field map. The only
// failures are a message with no segment lines at all and a line whose
// type token is blank.
func Decode(wireText string, schema *Schema) (models.Record, error) {
	const op = "Decode"

	normalized := strings.ReplaceAll(wireText, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	rec := models.Record{}
	segments := 0
	for lineNo, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		segments++

		tokens := strings.Split(line, FieldSeparator)
		segType := strings.TrimSpace(tokens[0])
		if segType == "" {
			return nil, NewCodecError(op, ErrMalformedSegment, lineNo+1, "blank segment type token")
		}
		values := tokens[1:]

		key := segType
		if def, known := schema.Segment(segType); known && def.Repeating {
			setID := valueAt(values, def.SetIDPosition())
			if setID != "" && setID != def.SetIDZero {
				key = segType + setID
			}
		}

		fields := make(models.FieldMap, len(values))
		for i, value := range values {
			fields[schema.NameFor(segType, i+1)] = value
		}
		rec[key] = fields
	}

	if segments == 0 {
		return nil, NewCodecError(op, ErrEmptyMessage, 0, "no segment lines in input")
	}
	return rec, nil
}

// valueAt returns the field value at a 1-based wire position, or empty when
// the line is too short to carry it.
func valueAt(values []string, position int) string {
	if position < 1 || position > len(values) {
		return ""
	}
	return values[position-1]
}
