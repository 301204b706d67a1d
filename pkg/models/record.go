package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FieldMap holds the populated fields of one segment instance, keyed by
// canonical field name. A missing key means "not populated", which is
// distinct from a key holding an explicit empty string.
type FieldMap map[string]string

// Record is the canonical, wire-independent representation of one
// clinical/billing encounter. Keys are segment keys: the segment type code
// (e.g., "PID"), suffixed with the instance set identifier for repeating
// segment types (e.g., "DG11", "DG12").
type Record map[string]FieldMap

// Get returns the value stored for name in the segment keyed by key, and
// whether it was populated at all.
func (r Record) Get(key, name string) (string, bool) {
	fields, ok := r[key]
	if !ok {
		return "", false
	}
	v, ok := fields[name]
	return v, ok
}

// Set stores value under name in the segment keyed by key, creating the
// segment's field map if needed.
func (r Record) Set(key, name, value string) {
	fields, ok := r[key]
	if !ok {
		fields = FieldMap{}
		r[key] = fields
	}
	fields[name] = value
}

// Clone returns a deep copy of the record. Codec operations never mutate
// their input; callers that need to adjust a decoded record work on a copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for key, fields := range r {
		cp := make(FieldMap, len(fields))
		for name, value := range fields {
			cp[name] = value
		}
		out[key] = cp
	}
	return out
}

// SegmentKeys returns the record's segment keys in sorted order. Record
// iteration order is undefined; callers that need stable output (logging,
// JSON diffs) go through this.
func (r Record) SegmentKeys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders the record as an object keyed by segment key, each
// value an object of string to string pairs.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]FieldMap(r))
}

// ParseRecord parses the canonical JSON shape into a Record. The payload
// must be an object of objects with string values.
func ParseRecord(data []byte) (Record, error) {
	var raw map[string]FieldMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse canonical record: %w", err)
	}
	rec := make(Record, len(raw))
	for key, fields := range raw {
		if fields == nil {
			fields = FieldMap{}
		}
		rec[key] = fields
	}
	return rec, nil
}
