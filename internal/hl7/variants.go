package hl7

import "fmt"

// Schema variant names accepted by VariantSchema. The observed paper-form
// variants disagree on where the rendering-provider address and phone sit,
// so the mapping is pinned per deployment instead of guessed at runtime.
const (
	VariantForm1500  = "form1500"
	VariantForm1500A = "form1500a"
)

// Form1500Schema returns the default field mapping for CMS-1500 encounter
// messages.
//
// IN1 position 6 is deliberately unmapped: no business field occupies it on
// this form revision, so it decodes as "field6" and encodes only when a
// value is supplied under that generic name.
func Form1500Schema() *Schema {
	return form1500Base().
		Segment("PRV").
		Field(1, "providerName").
		Field(2, "providerNPI").
		Field(3, "federalTaxID").
		Field(4, "providerAddress").
		Field(5, "providerPhone").
		MustBuild()
}

// Form1500ASchema returns the mapping used by the older form variant, which
// carries the provider phone before the address.
func Form1500ASchema() *Schema {
	return form1500Base().
		Segment("PRV").
		Field(1, "providerName").
		Field(2, "providerNPI").
		Field(3, "federalTaxID").
		Field(4, "providerPhone").
		Field(5, "providerAddress").
		MustBuild()
}

func form1500Base() *SchemaBuilder {
	b := NewSchemaBuilder()
	b.Segment("MSH").
		Field(1, "sendingApp").
		Field(2, "sendingFacility").
		Field(3, "receivingApp").
		Field(4, "receivingFacility").
		Date(5, "messageDate").
		Field(6, "messageType").
		Field(7, "controlID").
		Segment("PID").
		Field(1, "patientID").
		Field(2, "patientName").
		Date(3, "dateOfBirth").
		Field(4, "sex").
		Field(5, "patientAddress").
		Field(6, "patientPhone").
		Segment("PV1").
		Field(1, "patientClass").
		Field(2, "serviceLocation").
		Date(3, "admitDate").
		Segment("IN1").
		Field(1, "planID").
		Field(2, "planName").
		Field(3, "insuredID").
		Field(4, "insuredName").
		Field(5, "groupNumber").
		Field(7, "relationship").
		Segment("GT1").
		Field(1, "guarantorName").
		Field(2, "guarantorAddress").
		Field(3, "guarantorPhone").
		Segment("DG1").
		Repeats(1, "setID").
		Field(2, "diagnosisCode").
		Field(3, "diagnosisDescription").
		Date(4, "diagnosisDate").
		Segment("PR1").
		Repeats(1, "setID").
		Field(2, "procedureCode").
		Field(3, "procedureDescription").
		Date(4, "procedureDate").
		Field(5, "chargeAmount")
	return b
}

// VariantSchema returns the built-in schema registered under name. An empty
// name selects the default form1500 mapping.
func VariantSchema(name string) (*Schema, error) {
	switch name {
	case "", VariantForm1500:
		return Form1500Schema(), nil
	case VariantForm1500A:
		return Form1500ASchema(), nil
	default:
		return nil, fmt.Errorf("unknown schema variant: %q (known: %s, %s)", name, VariantForm1500, VariantForm1500A)
	}
}
