// Package hl7 implements the bidirectional codec between the canonical
// encounter record and the pipe-delimited segment wire format, plus the
// schema tables that drive both directions.
//
// The codec is table-driven: a Schema maps wire field positions to canonical
// field names per segment type, and Encode/Decode interpret the table rather
// than hardcoding any segment layout. Different document variants (the same
// wire format carries several business documents with slightly different
// field sets) are expressed as different Schema values, never as branches in
// codec logic.
//
// Encode and decode share one schema but are not exact inverses at the
// record level: positions without a schema entry decode under a generic
// "field<N>" name, and unknown segment types decode fully generically. The
// encoder honors generic names positionally, so such values still survive a
// decode-then-encode pass on the wire; they just never regain a semantic
// name unless the schema defines the position.
package hl7

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldSeparator is the single fixed character separating field values on a
// wire line. Values containing it are not supported; no escaping is
// performed.
const FieldSeparator = "|"

// Transform rewrites a field value on its way to the wire. Transforms run at
// encode time only; decoded values stay in wire form.
type Transform func(string) string

// FieldDef maps one wire position of a segment to a canonical field name.
type FieldDef struct {
	// Position is the 1-based index of the field within the pipe-delimited
	// segment. Position 0 is the segment type token itself and never appears
	// in a schema.
	Position int

	// Name is the canonical field name.
	Name string

	// Transform, if set, is applied to the value when encoding.
	Transform Transform
}

// SegmentDef describes one known segment type: its ordered field mappings
// and, for repeating types, how instances are disambiguated.
type SegmentDef struct {
	// Type is the segment type code (e.g., "PID").
	Type string

	// Repeating marks types that may appear multiple times per message,
	// each instance carrying its own set identifier.
	Repeating bool

	// SetIDName is the canonical name of the set identifier field for
	// repeating types.
	SetIDName string

	// SetIDZero is the sentinel set identifier value that, like absence,
	// yields an empty segment key suffix.
	SetIDZero string

	fields     []FieldDef
	byPosition map[int]FieldDef
	maxPos     int
	setIDPos   int
}

// SetIDPosition returns the wire position of the set identifier field, or 0
// for non-repeating types.
func (d *SegmentDef) SetIDPosition() int {
	return d.setIDPos
}

// Fields returns the segment's field definitions ordered by wire position.
func (d *SegmentDef) Fields() []FieldDef {
	return d.fields
}

// MaxPosition returns the highest mapped wire position.
func (d *SegmentDef) MaxPosition() int {
	return d.maxPos
}

// Schema is the injected mapping table consumed by Encoder, Decoder and the
// extractor's record shaping. Schemas are static per deployment; build one
// with NewSchemaBuilder or pick a built-in variant with VariantSchema.
type Schema struct {
	order    []string
	segments map[string]*SegmentDef
}

// TypeOrder returns the segment types in their declared order, which is the
// order the encoder emits them in.
func (s *Schema) TypeOrder() []string {
	return s.order
}

// Segment returns the definition for segType, or false for unknown types.
func (s *Schema) Segment(segType string) (*SegmentDef, bool) {
	def, ok := s.segments[segType]
	return def, ok
}

// FieldsFor returns the ordered field definitions for segType. Unknown
// types have no mappings and return nil.
func (s *Schema) FieldsFor(segType string) []FieldDef {
	def, ok := s.segments[segType]
	if !ok {
		return nil
	}
	return def.fields
}

// NameFor resolves the canonical name for a wire position of segType,
// falling back to the generic positional name when the position is unmapped
// or the type is unknown.
func (s *Schema) NameFor(segType string, position int) string {
	if def, ok := s.segments[segType]; ok {
		if fd, ok := def.byPosition[position]; ok {
			return fd.Name
		}
	}
	return GenericFieldName(position)
}

// GenericFieldName is the fallback name for a wire position with no schema
// entry.
func GenericFieldName(position int) string {
	return fmt.Sprintf("field%d", position)
}

// genericFieldPosition reports the wire position encoded in a generic
// positional name, or false when the name is not of the field<N> form.
func genericFieldPosition(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "field")
	if !ok || digits == "" {
		return 0, false
	}
	pos, err := strconv.Atoi(digits)
	if err != nil || pos < 1 {
		return 0, false
	}
	return pos, true
}

// SchemaBuilder assembles a Schema one segment type at a time. Builder
// methods accumulate; the first definition error is reported by Build.
type SchemaBuilder struct {
	schema *Schema
	err    error
}

// NewSchemaBuilder returns an empty builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		schema: &Schema{segments: map[string]*SegmentDef{}},
	}
}

// Segment starts (or reopens) the definition of a segment type.
func (b *SchemaBuilder) Segment(segType string) *SegmentBuilder {
	if segType == "" {
		b.fail(fmt.Errorf("segment type must not be empty"))
	}
	def, ok := b.schema.segments[segType]
	if !ok {
		def = &SegmentDef{
			Type:       segType,
			SetIDZero:  "0",
			byPosition: map[int]FieldDef{},
		}
		b.schema.segments[segType] = def
		b.schema.order = append(b.schema.order, segType)
	}
	return &SegmentBuilder{parent: b, def: def}
}

// Build returns the assembled schema, or the first definition error
// encountered.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.schema, nil
}

// MustBuild is Build for statically known tables; it panics on a definition
// error.
func (b *SchemaBuilder) MustBuild() *Schema {
	schema, err := b.Build()
	if err != nil {
		panic(err)
	}
	return schema
}

func (b *SchemaBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// SegmentBuilder defines the fields of one segment type.
type SegmentBuilder struct {
	parent *SchemaBuilder
	def    *SegmentDef
}

// Field maps a wire position to a canonical field name.
func (sb *SegmentBuilder) Field(position int, name string) *SegmentBuilder {
	return sb.add(FieldDef{Position: position, Name: name})
}

// Date maps a wire position to a date field; the value is normalized to the
// compact YYYYMMDD token at encode time.
func (sb *SegmentBuilder) Date(position int, name string) *SegmentBuilder {
	return sb.add(FieldDef{Position: position, Name: name, Transform: NormalizeDate})
}

// Repeats marks the segment type as repeating and maps the set identifier
// field that disambiguates instances.
func (sb *SegmentBuilder) Repeats(position int, name string) *SegmentBuilder {
	sb.def.Repeating = true
	sb.def.SetIDName = name
	sb.def.setIDPos = position
	return sb.add(FieldDef{Position: position, Name: name})
}

// Segment closes this segment and starts the next one.
func (sb *SegmentBuilder) Segment(segType string) *SegmentBuilder {
	return sb.parent.Segment(segType)
}

// Build closes this segment and returns the assembled schema.
func (sb *SegmentBuilder) Build() (*Schema, error) {
	return sb.parent.Build()
}

// MustBuild closes this segment and returns the schema, panicking on error.
func (sb *SegmentBuilder) MustBuild() *Schema {
	return sb.parent.MustBuild()
}

func (sb *SegmentBuilder) add(fd FieldDef) *SegmentBuilder {
	if fd.Position < 1 {
		sb.parent.fail(fmt.Errorf("segment %s: field %q: position %d is not a wire position", sb.def.Type, fd.Name, fd.Position))
		return sb
	}
	if prev, exists := sb.def.byPosition[fd.Position]; exists {
		sb.parent.fail(fmt.Errorf("segment %s: position %d mapped to both %q and %q", sb.def.Type, fd.Position, prev.Name, fd.Name))
		return sb
	}
	sb.def.byPosition[fd.Position] = fd
	sb.def.fields = append(sb.def.fields, fd)
	sort.Slice(sb.def.fields, func(i, j int) bool {
		return sb.def.fields[i].Position < sb.def.fields[j].Position
	})
	if fd.Position > sb.def.maxPos {
		sb.def.maxPos = fd.Position
	}
	return sb
}
