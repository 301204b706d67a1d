package models_test

import (
	"encoding/json"
	"testing"

	"claimbridge/pkg/models"
)

func TestGetDistinguishesEmptyFromAbsent(t *testing.T) {
	rec := models.Record{"PID": {"patientName": ""}}

	if v, ok := rec.Get("PID", "patientName"); !ok || v != "" {
		t.Fatalf("populated empty field: got (%q, %v)", v, ok)
	}
	if _, ok := rec.Get("PID", "sex"); ok {
		t.Fatal("absent field must report ok=false")
	}
	if _, ok := rec.Get("IN1", "insuredID"); ok {
		t.Fatal("absent segment must report ok=false")
	}
}

func TestSetCreatesSegmentOnDemand(t *testing.T) {
	rec := models.Record{}
	rec.Set("DG11", "diagnosisCode", "R51.9")
	rec.Set("DG11", "setID", "1")

	if v, _ := rec.Get("DG11", "diagnosisCode"); v != "R51.9" {
		t.Fatalf("got %q", v)
	}
	if len(rec["DG11"]) != 2 {
		t.Fatalf("segment field count: got %d, want 2", len(rec["DG11"]))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := models.Record{"PID": {"patientName": "DOE, JOHN"}}
	cp := orig.Clone()

	cp.Set("PID", "patientName", "SMITH, JANE")
	cp.Set("IN1", "insuredID", "XYZ999")

	if v, _ := orig.Get("PID", "patientName"); v != "DOE, JOHN" {
		t.Fatalf("original mutated through clone: %q", v)
	}
	if _, ok := orig["IN1"]; ok {
		t.Fatal("segment added to clone leaked into original")
	}
}

func TestSegmentKeysSorted(t *testing.T) {
	rec := models.Record{"PR11": {}, "DG11": {}, "MSH": {}, "PID": {}}
	got := rec.SegmentKeys()
	want := []string{"DG11", "MSH", "PID", "PR11"}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("keys: got %v, want %v", got, want)
		}
	}
}

func TestParseRecordRoundTrip(t *testing.T) {
	rec := models.Record{
		"MSH":  {"sendingApp": "FORM1500OCR"},
		"DG11": {"setID": "1", "diagnosisCode": "R51.9"},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := models.ParseRecord(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := back.Get("DG11", "diagnosisCode"); v != "R51.9" {
		t.Fatalf("round trip lost field: %q", v)
	}
}

func TestParseRecordRejectsWrongShape(t *testing.T) {
	for _, in := range []string{`[]`, `{"PID": "flat"}`, `{"PID": {"sex": 1}}`, `not json`} {
		if _, err := models.ParseRecord([]byte(in)); err == nil {
			t.Errorf("ParseRecord(%q): expected error", in)
		}
	}
}

func TestParseRecordNormalizesNullSegment(t *testing.T) {
	rec, err := models.ParseRecord([]byte(`{"PV1": null}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec["PV1"] == nil {
		t.Fatal("null segment must become an empty field map")
	}
	rec.Set("PV1", "patientClass", "O")
}
