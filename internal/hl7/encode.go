package hl7

import (
	"sort"
	"strings"

	"claimbridge/pkg/models"
)

// Encode renders a canonical record as wire message text, one segment line
// per populated segment instance, in the schema's declared type order. Keys
// whose type the schema does not know follow the schema-ordered lines, in
// sorted key order, with only their generic field<N> entries emitted. The
// input record is never mutated.
//
// A segment type absent from the record is omitted entirely. A segment key
// present with no populated fields still emits its bare type token, which
// keeps "present but empty" distinct from "absent" across a round trip.
// Fields stored under generic field<N> names emit at position N when the
// schema leaves that position unmapped, so values decoded through the
// generic fallback survive a decode-then-encode pass.
func Encode(rec models.Record, schema *Schema) string {
	var lines []string
	emitted := make(map[string]bool, len(rec))
	for _, segType := range schema.TypeOrder() {
		def, _ := schema.Segment(segType)
		if def.Repeating {
			for _, key := range repeatingKeys(rec, def) {
				emitted[key] = true
				lines = append(lines, encodeSegment(segType, rec[key], def))
			}
			continue
		}
		fields, ok := rec[segType]
		if !ok {
			continue
		}
		emitted[segType] = true
		lines = append(lines, encodeSegment(segType, fields, def))
	}

	var rest []string
	for key := range rec {
		if !emitted[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		lines = append(lines, encodeSegment(key, rec[key], nil))
	}
	return strings.Join(lines, "\n")
}

// encodeSegment builds one wire line. Slots are allocated up to the highest
// position carried by either a schema mapping or a generic field<N> name,
// filled from the record, then trailing empties are trimmed; interior
// empties stay, since an interior gap means "not applicable" rather than
// "absent". Generic names fill only positions the schema leaves unmapped;
// a nil def encodes a type the schema does not know, where every field is
// generic.
func encodeSegment(segType string, fields models.FieldMap, def *SegmentDef) string {
	maxPos := 0
	if def != nil {
		maxPos = def.MaxPosition()
	}
	for name := range fields {
		if pos, ok := genericFieldPosition(name); ok && pos > maxPos {
			maxPos = pos
		}
	}

	slots := make([]string, maxPos)
	if def != nil {
		for _, fd := range def.Fields() {
			value, ok := fields[fd.Name]
			if !ok {
				continue
			}
			if fd.Transform != nil {
				value = fd.Transform(value)
			}
			slots[fd.Position-1] = value
		}
	}
	for name, value := range fields {
		pos, ok := genericFieldPosition(name)
		if !ok {
			continue
		}
		if def != nil {
			if _, mapped := def.byPosition[pos]; mapped {
				continue
			}
		}
		slots[pos-1] = value
	}

	for len(slots) > 0 && slots[len(slots)-1] == "" {
		slots = slots[:len(slots)-1]
	}
	if len(slots) == 0 {
		return segType
	}
	return segType + FieldSeparator + strings.Join(slots, FieldSeparator)
}

// repeatingKeys collects the record keys that are instances of the
// repeating type: the type code followed by the instance's own set
// identifier value, or the bare type code when the identifier is absent or
// equals the zero sentinel. Requiring the suffix to match the identifier
// keeps keys of a longer type code that happens to extend this one out of
// the sweep. Instances are ordered by the string value of the set
// identifier. The comparison is lexicographic, not numeric: "10" sorts
// before "2". Downstream consumers of the wire format depend on that
// ordering, so it is preserved deliberately.
func repeatingKeys(rec models.Record, def *SegmentDef) []string {
	var keys []string
	for key, fields := range rec {
		suffix, ok := strings.CutPrefix(key, def.Type)
		if !ok {
			continue
		}
		setID := fields[def.SetIDName]
		if suffix == "" {
			if setID == "" || setID == def.SetIDZero {
				keys = append(keys, key)
			}
			continue
		}
		if suffix == setID {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a := rec[keys[i]][def.SetIDName]
		b := rec[keys[j]][def.SetIDName]
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
