package hl7_test

import (
	"errors"
	"reflect"
	"testing"

	"claimbridge/internal/hl7"
	"claimbridge/pkg/models"
)

func TestDecodeResolvesMappedAndGenericNames(t *testing.T) {
	schema := hl7.NewSchemaBuilder().
		Segment("MSH").Field(1, "sendingApp").
		Segment("PID").Field(1, "patientID").
		MustBuild()

	rec, err := hl7.Decode("MSH|a|b\nPID|x", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	want := models.Record{
		"MSH": {"sendingApp": "a", "field2": "b"},
		"PID": {"patientID": "x"},
	}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("got %#v, want %#v", rec, want)
	}
}

func TestDecodeRepeatingTypeProducesDistinctKeys(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("OBX|1|first\nOBX|2|second", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(rec) != 2 {
		t.Fatalf("expected two segment keys, got %#v", rec)
	}
	if rec["OBX1"]["value"] != "first" || rec["OBX2"]["value"] != "second" {
		t.Fatalf("unexpected repeating keys: %#v", rec)
	}
}

func TestDecodeDuplicateKeyIsLastWriteWins(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("MSH|first\nMSH|second|extra", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	fields := rec["MSH"]
	if fields["sendingApp"] != "second" {
		t.Fatalf("expected later line to win, got %#v", fields)
	}
	if _, ok := fields["sendingFacility"]; !ok {
		t.Fatalf("later line's field map should replace, not merge: %#v", fields)
	}
}

func TestDecodeRepeatingZeroSentinelGetsEmptySuffix(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("OBX|0|zeroed\nOBX||blank", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	// Both the "0" sentinel and an absent set identifier yield the bare
	// type key, so the second line overwrites the first.
	if len(rec) != 1 {
		t.Fatalf("expected one segment key, got %#v", rec)
	}
	if rec["OBX"]["value"] != "blank" {
		t.Fatalf("got %#v", rec)
	}
}

func TestDecodeBareTypeTokenYieldsEmptyFieldMap(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("MSH", schema)
	if err != nil {
		t.Fatalf("a bare type token is valid, got error: %v", err)
	}
	fields, ok := rec["MSH"]
	if !ok || len(fields) != 0 {
		t.Fatalf("expected empty field map, got %#v", rec)
	}
}

func TestDecodeUnknownSegmentTypeUsesGenericNames(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("ZZZ|a||c", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	want := models.FieldMap{"field1": "a", "field2": "", "field3": "c"}
	if !reflect.DeepEqual(rec["ZZZ"], want) {
		t.Fatalf("got %#v, want %#v", rec["ZZZ"], want)
	}
}

func TestDecodeDoesNotApplyTransforms(t *testing.T) {
	schema := testSchema(t)

	rec, err := hl7.Decode("PID|42|2/1/1980", schema)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	// Normalization is an encode-time concern; decoded dates stay in wire
	// form.
	if rec["PID"]["dateOfBirth"] != "2/1/1980" {
		t.Fatalf("decode must not normalize dates, got %#v", rec["PID"])
	}
}

func TestDecodeHandlesCarriageReturnTerminators(t *testing.T) {
	schema := testSchema(t)

	for _, wire := range []string{"MSH|a\rPID|x", "MSH|a\r\nPID|x", "MSH|a\n\n\nPID|x"} {
		rec, err := hl7.Decode(wire, schema)
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", wire, err)
		}
		if len(rec) != 2 {
			t.Fatalf("Decode(%q): expected 2 segments, got %#v", wire, rec)
		}
	}
}

func TestDecodeEmptyInputFails(t *testing.T) {
	schema := testSchema(t)

	for _, wire := range []string{"", "   ", "\n\n", "\r\n"} {
		_, err := hl7.Decode(wire, schema)
		if !errors.Is(err, hl7.ErrEmptyMessage) {
			t.Fatalf("Decode(%q): expected ErrEmptyMessage, got %v", wire, err)
		}
	}
}

func TestDecodeBlankTypeTokenFails(t *testing.T) {
	schema := testSchema(t)

	_, err := hl7.Decode("|a|b", schema)
	if !errors.Is(err, hl7.ErrMalformedSegment) {
		t.Fatalf("expected ErrMalformedSegment, got %v", err)
	}
}
