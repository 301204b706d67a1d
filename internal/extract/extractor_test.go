package extract_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"claimbridge/internal/extract"
)

// sampleForm is a cleaned-up stand-in for the OCR text of a legible
// CMS-1500 scan.
const sampleForm = `HEALTH INSURANCE CLAIM FORM 1500
MEDICARE MEDICAID TRICARE
PATIENT'S NAME DOE, JOHN A
BIRTH DATE 02/01/1980 SEX M
PATIENT'S ADDRESS 12 MAIN ST CITY SPRINGFIELD
INSURED'S I.D. NUMBER ABC123456
INSURED'S NAME DOE, JANE
DIAGNOSIS OR NATURE OF ILLNESS R51.9
DATES OF SERVICE 3/4/2024
PROCEDURES SERVICES OR SUPPLIES CPT/HCPCS 99213
CHARGES 125.00
FEDERAL TAX I.D. NUMBER 12-3456789
BILLING PROVIDER SMITH FAMILY CLINIC NPI 1234567890`

func TestExtractRecoversFormFields(t *testing.T) {
	rec, err := extract.NewForm1500().Extract(sampleForm)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := map[string][2]string{
		"patient name":    {"PID", "patientName"},
		"date of birth":   {"PID", "dateOfBirth"},
		"sex":             {"PID", "sex"},
		"patient address": {"PID", "patientAddress"},
		"insured id":      {"IN1", "insuredID"},
		"insured name":    {"IN1", "insuredName"},
		"provider name":   {"PRV", "providerName"},
		"provider npi":    {"PRV", "providerNPI"},
		"federal tax id":  {"PRV", "federalTaxID"},
		"diagnosis":       {"DG11", "diagnosisCode"},
		"service date":    {"PR11", "procedureDate"},
		"procedure code":  {"PR11", "procedureCode"},
		"charge":          {"PR11", "chargeAmount"},
	}
	values := map[string]string{
		"patient name":    "DOE, JOHN A",
		"date of birth":   "02/01/1980",
		"sex":             "M",
		"patient address": "12 MAIN ST",
		"insured id":      "ABC123456",
		"insured name":    "DOE, JANE",
		"provider name":   "SMITH FAMILY CLINIC",
		"provider npi":    "1234567890",
		"federal tax id":  "12-3456789",
		"diagnosis":       "R51.9",
		"service date":    "3/4/2024",
		"procedure code":  "99213",
		"charge":          "125.00",
	}

	for label, loc := range want {
		got, ok := rec.Get(loc[0], loc[1])
		if !ok {
			t.Errorf("%s: %s.%s not populated", label, loc[0], loc[1])
			continue
		}
		if got != values[label] {
			t.Errorf("%s: got %q, want %q", label, got, values[label])
		}
	}
}

func TestExtractSeedsEnvelopeAndSetIdentifiers(t *testing.T) {
	rec, err := extract.NewForm1500().Extract(sampleForm)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if v, _ := rec.Get("MSH", "sendingApp"); v != "FORM1500OCR" {
		t.Fatalf("MSH.sendingApp: got %q", v)
	}
	if v, _ := rec.Get("DG11", "setID"); v != "1" {
		t.Fatalf("DG11.setID: got %q", v)
	}
	if v, _ := rec.Get("PR11", "setID"); v != "1" {
		t.Fatalf("PR11.setID: got %q", v)
	}
}

func TestExtractRejectsShortText(t *testing.T) {
	_, err := extract.NewForm1500().Extract("CLAIM 1500")
	if !errors.Is(err, extract.ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
}

func TestExtractRejectsTextWithoutKeywords(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	_, err := extract.NewForm1500().Extract(text)
	if !errors.Is(err, extract.ErrNotClaimForm) {
		t.Fatalf("expected ErrNotClaimForm, got %v", err)
	}
}

func TestExtractBelowQuorumListsMissingRequiredFields(t *testing.T) {
	// Keywords and length pass, but only the patient name is recoverable:
	// one required match is below the quorum of three.
	text := "HEALTH INSURANCE CLAIM FORM 1500 APPROVED OMB PATIENT'S NAME DOE, JOHN A NOTHING ELSE SURVIVED THE SCAN"

	_, err := extract.NewForm1500().Extract(text)

	var quorumErr *extract.QuorumError
	if !errors.As(err, &quorumErr) {
		t.Fatalf("expected QuorumError, got %v", err)
	}
	if !errors.Is(err, extract.ErrQuorumNotMet) {
		t.Fatal("QuorumError must match ErrQuorumNotMet")
	}
	if quorumErr.Matched != 1 {
		t.Fatalf("matched count: got %d, want 1", quorumErr.Matched)
	}

	wantMissing := []string{"dateOfBirth", "insuredID", "diagnosisCode", "procedureDate"}
	if !reflect.DeepEqual(quorumErr.Missing, wantMissing) {
		t.Fatalf("missing fields: got %v, want %v", quorumErr.Missing, wantMissing)
	}
}

func TestExtractFillsDefaultsForOptionalMisses(t *testing.T) {
	// Enough required fields to pass quorum, but no provider, procedure or
	// charge information anywhere.
	text := `HEALTH INSURANCE CLAIM FORM 1500
PATIENT'S NAME DOE, JOHN A
BIRTH DATE 02/01/1980
INSURED'S I.D. NUMBER ABC123456`

	rec, err := extract.NewForm1500().Extract(text)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	for label, want := range map[string]struct {
		segment, name, value string
	}{
		"provider":        {"PRV", "providerName", extract.DefaultProviderName},
		"insured name":    {"IN1", "insuredName", extract.DefaultInsuredName},
		"patient address": {"PID", "patientAddress", extract.DefaultPatientAddress},
		"npi":             {"PRV", "providerNPI", extract.DefaultProviderNPI},
		"tax id":          {"PRV", "federalTaxID", extract.DefaultFederalTaxID},
		"procedure":       {"PR11", "procedureCode", extract.DefaultProcedureCode},
		"sex":             {"PID", "sex", extract.DefaultSex},
		"charge":          {"PR11", "chargeAmount", extract.DefaultCharge},
	} {
		got, ok := rec.Get(want.segment, want.name)
		if !ok {
			t.Errorf("%s: %s.%s left absent on a miss", label, want.segment, want.name)
			continue
		}
		if got != want.value {
			t.Errorf("%s default: got %q, want %q", label, got, want.value)
		}
	}
}

func TestExtractRejectsOutOfRangeYears(t *testing.T) {
	for _, year := range []string{"1065", "3024"} {
		text := fmt.Sprintf(`HEALTH INSURANCE CLAIM FORM 1500
PATIENT'S NAME DOE, JOHN A
BIRTH DATE 02/01/%s
INSURED'S I.D. NUMBER ABC123456
DIAGNOSIS R51.9
DATES OF SERVICE 3/4/2024`, year)

		rec, err := extract.NewForm1500().Extract(text)
		if err != nil {
			t.Fatalf("year %s: Extract returned error: %v", year, err)
		}
		if v, ok := rec.Get("PID", "dateOfBirth"); ok {
			t.Fatalf("year %s: out-of-range date must stay unset, got %q", year, v)
		}
	}
}

func TestExtractUsesFallbackPattern(t *testing.T) {
	// No "BIRTH DATE" caption, but the DOB abbreviation with an internally
	// delimited date exercises the single-group fallback path.
	text := `HEALTH INSURANCE CLAIM FORM 1500
PATIENT'S NAME DOE, JOHN A
DOB 2/1/1980
INSURED'S I.D. NUMBER ABC123456
DIAGNOSIS R51.9
DATES OF SERVICE 3/4/2024`

	rec, err := extract.NewForm1500().Extract(text)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if v, _ := rec.Get("PID", "dateOfBirth"); v != "2/1/1980" {
		t.Fatalf("fallback date: got %q", v)
	}
}

func TestCleanNormalizesWhitespaceAndStripsNoise(t *testing.T) {
	in := "PATIENT'S\t\tNAME\n\n DOE,§ JOHN •"
	got := extract.Clean(in)
	want := "PATIENT'S NAME DOE, JOHN"
	if got != want {
		t.Fatalf("Clean: got %q, want %q", got, want)
	}
}
