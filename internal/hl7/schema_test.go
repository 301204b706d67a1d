package hl7_test

import (
	"strings"
	"testing"

	"claimbridge/internal/hl7"
)

func TestSchemaBuilderRejectsDuplicatePositions(t *testing.T) {
	_, err := hl7.NewSchemaBuilder().
		Segment("PID").
		Field(1, "patientID").
		Field(1, "patientName").
		Build()
	if err == nil {
		t.Fatal("expected error for duplicate position")
	}
	if !strings.Contains(err.Error(), "position 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchemaBuilderRejectsPositionZero(t *testing.T) {
	_, err := hl7.NewSchemaBuilder().
		Segment("MSH").
		Field(0, "segmentType").
		Build()
	if err == nil {
		t.Fatal("expected error for position 0: it belongs to the type token")
	}
}

func TestSchemaNameForFallsBackToGenericName(t *testing.T) {
	schema := hl7.NewSchemaBuilder().
		Segment("MSH").
		Field(1, "sendingApp").
		MustBuild()

	if got := schema.NameFor("MSH", 1); got != "sendingApp" {
		t.Fatalf("mapped position: got %q", got)
	}
	if got := schema.NameFor("MSH", 2); got != "field2" {
		t.Fatalf("unmapped position: got %q, want field2", got)
	}
	if got := schema.NameFor("ZZZ", 1); got != "field1" {
		t.Fatalf("unknown segment type: got %q, want field1", got)
	}
}

func TestSchemaTypeOrderIsDeclarationOrder(t *testing.T) {
	schema := hl7.NewSchemaBuilder().
		Segment("MSH").Field(1, "a").
		Segment("PID").Field(1, "b").
		Segment("IN1").Field(1, "c").
		MustBuild()

	want := []string{"MSH", "PID", "IN1"}
	got := schema.TypeOrder()
	if len(got) != len(want) {
		t.Fatalf("type order length: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("type order: got %v, want %v", got, want)
		}
	}
}

func TestVariantSchemaLookup(t *testing.T) {
	for _, name := range []string{"", hl7.VariantForm1500, hl7.VariantForm1500A} {
		if _, err := hl7.VariantSchema(name); err != nil {
			t.Fatalf("VariantSchema(%q) returned error: %v", name, err)
		}
	}
	if _, err := hl7.VariantSchema("form9999"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestVariantsDisagreeOnProviderPositions(t *testing.T) {
	def := hl7.Form1500Schema()
	legacy := hl7.Form1500ASchema()

	if got := def.NameFor("PRV", 4); got != "providerAddress" {
		t.Fatalf("form1500 PRV position 4: got %q", got)
	}
	if got := legacy.NameFor("PRV", 4); got != "providerPhone" {
		t.Fatalf("form1500a PRV position 4: got %q", got)
	}
}
