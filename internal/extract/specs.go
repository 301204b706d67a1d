package extract

import (
	"regexp"

	"claimbridge/pkg/models"
)

// Policy constants for heuristic extraction. These are deliberate choices,
// not derived from the form data; adjust per deployment.
const (
	// RequiredQuorum is the minimum number of required fields that must
	// match for an extraction to succeed. A partial scan can still be
	// accepted as long as this many required fields were recovered.
	RequiredQuorum = 3

	// MinTextLength is the minimum cleaned-text length worth matching
	// against; anything shorter is rejected before field matching.
	MinTextLength = 40

	// MinAcceptedYear bounds extracted date years from below. OCR happily
	// produces years like 1065 out of smudged digits.
	MinAcceptedYear = 1900
)

// Default sentinels for optional fields that fail to match. The output
// record must stay fully shaped for downstream encoding, so every miss gets
// a recognizable placeholder instead of a hole. Date fields are the
// exception: a fabricated date on the wire is worse than an absent one.
const (
	DefaultProviderName   = "Unknown Provider"
	DefaultInsuredName    = "Unknown Insured"
	DefaultPatientAddress = "Unknown Address"
	DefaultProviderNPI    = "9999999999"
	DefaultFederalTaxID   = "00-0000000"
	DefaultProcedureCode  = "99999"
	DefaultDiagnosisCode  = "R69"
	DefaultSex            = "U"
	DefaultCharge         = "0.00"
)

// identifyingKeywords gate field matching: the cleaned, uppercased text must
// contain at least one of these before any per-field work happens.
var identifyingKeywords = []string{
	"HEALTH INSURANCE",
	"CLAIM",
	"1500",
	"MEDICARE",
	"MEDICAID",
	"TRICARE",
}

// FieldSpec declares how one canonical field is recovered from OCR text and
// where it lands in the output record.
type FieldSpec struct {
	// Name is the canonical field name inside the target segment.
	Name string

	// Segment is the segment key the matched value is stored under.
	Segment string

	// Primary is tried first; Fallback (optional) is tried only when
	// Primary does not match. The first successful match wins.
	Primary  *regexp.Regexp
	Fallback *regexp.Regexp

	// Required fields count toward the extraction quorum.
	Required bool

	// Date marks fields whose match is post-processed into month/day/year
	// and year-range validated.
	Date bool

	// Default is stored when the field does not match and is not required
	// to be absent; empty means the field stays unset on a miss.
	Default string
}

// Form1500Specs returns the ordered field specifications for a scanned
// CMS-1500 claim form. Order matters: fields are matched in this order and
// specs earlier in the list correspond to boxes earlier on the form.
func Form1500Specs() []FieldSpec {
	return []FieldSpec{
		{
			// The form prints names as "Last, First, MI"; the comma is the
			// most reliable OCR survivor, so the primary insists on it.
			Name:     "patientName",
			Segment:  "PID",
			Primary:  regexp.MustCompile(`(?i)patient'?s?\s+name[^A-Za-z]+([A-Za-z'-]+,\s*[A-Za-z'-]+(?:\s+[A-Za-z]\b)?)`),
			Fallback: regexp.MustCompile(`(?i)name\s+of\s+patient[^A-Za-z]+([A-Za-z'-]+(?:\s+[A-Za-z'-]+){0,2})`),
			Required: true,
		},
		{
			Name:     "dateOfBirth",
			Segment:  "PID",
			Primary:  regexp.MustCompile(`(?i)birth\s*date[^0-9]*(\d{1,2})[\s/-](\d{1,2})[\s/-](\d{4})`),
			Fallback: regexp.MustCompile(`(?i)\bDOB\b[^0-9]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
			Required: true,
			Date:     true,
		},
		{
			Name:    "sex",
			Segment: "PID",
			Primary: regexp.MustCompile(`(?i)\bsex\b[^A-Za-z]*([MF])\b`),
			Default: DefaultSex,
		},
		{
			Name:    "patientAddress",
			Segment: "PID",
			Primary: regexp.MustCompile(`(?i)patient'?s?\s+address[^0-9]*(\d+\s+[A-Za-z0-9 .,#/-]{5,40}?)(?:\s+(?:TELEPHONE|PHONE|CITY|STATE|ZIP)\b|\s*$)`),
			Default: DefaultPatientAddress,
		},
		{
			Name:     "insuredID",
			Segment:  "IN1",
			Primary:  regexp.MustCompile(`(?i)insured'?s?\s+i\.?d\.?\s*(?:number)?[^A-Za-z0-9]*([A-Z0-9][A-Z0-9-]{4,20})`),
			Fallback: regexp.MustCompile(`(?i)(?:medicare|medicaid)\s*(?:number|no\.?|#)?[^A-Za-z0-9]*([A-Z0-9][A-Z0-9-]{5,20})`),
			Required: true,
		},
		{
			Name:    "insuredName",
			Segment: "IN1",
			Primary: regexp.MustCompile(`(?i)insured'?s?\s+name[^A-Za-z]+([A-Za-z'-]+,\s*[A-Za-z'-]+(?:\s+[A-Za-z]\b)?)`),
			Default: DefaultInsuredName,
		},
		{
			Name:     "providerName",
			Segment:  "PRV",
			Primary:  regexp.MustCompile(`(?i)(?:billing|rendering)\s+provider(?:\s+info(?:rmation)?)?[^A-Za-z]+([A-Za-z][A-Za-z .,'&-]{2,40}?)(?:\s+NPI\b|\s+\d|\s*$)`),
			Fallback: regexp.MustCompile(`(?i)physician\s+or\s+supplier[^A-Za-z]+([A-Za-z][A-Za-z .,'&-]{2,40}?)(?:\s+NPI\b|\s+\d|\s*$)`),
			Default:  DefaultProviderName,
		},
		{
			Name:    "providerNPI",
			Segment: "PRV",
			Primary: regexp.MustCompile(`(?i)\bNPI\b[^0-9]*(\d{10})\b`),
			Default: DefaultProviderNPI,
		},
		{
			Name:     "federalTaxID",
			Segment:  "PRV",
			Primary:  regexp.MustCompile(`(?i)federal\s+tax\s+i\.?d\.?\s*(?:number)?[^0-9]*(\d{2}-?\d{7})\b`),
			Fallback: regexp.MustCompile(`(?i)\bEIN\b[^0-9]*(\d{2}-?\d{7})\b`),
			Default:  DefaultFederalTaxID,
		},
		{
			Name:     "diagnosisCode",
			Segment:  "DG11",
			Primary:  regexp.MustCompile(`(?i)diagnosis\b.{0,50}?\b([A-TV-Z]\d{2}(?:\.\d{1,4})?)\b`),
			Fallback: regexp.MustCompile(`(?i)\bICD\b.{0,20}?\b([A-TV-Z]\d{2}(?:\.\d{1,4})?)\b`),
			Required: true,
			Default:  DefaultDiagnosisCode,
		},
		{
			Name:     "procedureDate",
			Segment:  "PR11",
			Primary:  regexp.MustCompile(`(?i)date\(?s?\)?\s+of\s+service[^0-9]*(\d{1,2})[\s/-](\d{1,2})[\s/-](\d{4})`),
			Fallback: regexp.MustCompile(`(?i)\bDOS\b[^0-9]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
			Required: true,
			Date:     true,
		},
		{
			Name:    "procedureCode",
			Segment: "PR11",
			Primary: regexp.MustCompile(`(?i)(?:procedures?|services?|CPT|HCPCS)\b[^0-9]*(\d{5})\b`),
			Default: DefaultProcedureCode,
		},
		{
			Name:    "chargeAmount",
			Segment: "PR11",
			Primary: regexp.MustCompile(`(?i)(?:total\s+)?charges?\b[^0-9]*(\d{1,6}(?:\.\d{2})?)\b`),
			Default: DefaultCharge,
		},
	}
}

// form1500Seed returns the constant fields every extracted record carries so
// the result encodes cleanly: message envelope values and the set
// identifiers of the singleton diagnosis and service-line instances.
func form1500Seed() models.Record {
	return models.Record{
		"MSH":  {"sendingApp": "FORM1500OCR", "receivingApp": "CLAIMSYS", "messageType": "DFT"},
		"DG11": {"setID": "1"},
		"PR11": {"setID": "1"},
	}
}
