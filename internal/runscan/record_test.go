package runscan

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validBody = `{"model":"gpt","testdir":"x","testcase":"leap","edit_format":"diff","tests_outcomes":[true,false],"cost":0.1}`

func TestParseRecord_Valid(t *testing.T) {
	r, err := ParseRecord([]byte(validBody))
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if missing := r.MissingRequired(); missing != nil {
		t.Errorf("MissingRequired = %v, want none", missing)
	}
	if r.Model() != "gpt" {
		t.Errorf("Model = %q", r.Model())
	}
	outcomes, ok := r.Outcomes()
	if !ok {
		t.Fatal("Outcomes: not a list")
	}
	if diff := cmp.Diff([]bool{true, false}, outcomes); diff != "" {
		t.Errorf("outcomes (-want +got):\n%s", diff)
	}
	if !r.AnyPassed() {
		t.Error("AnyPassed should be true")
	}
}

func TestParseRecord_Malformed(t *testing.T) {
	if _, err := ParseRecord([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRecord_MissingRequired(t *testing.T) {
	r, err := ParseRecord([]byte(`{"model":"gpt","tests_outcomes":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"testdir", "testcase", "edit_format", "cost"}
	if diff := cmp.Diff(want, r.MissingRequired()); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
}

func TestRecord_PermissiveValidation(t *testing.T) {
	// Presence is all that counts: a string-typed cost still validates.
	r, err := ParseRecord([]byte(`{"testdir":"x","testcase":"c","model":"m","edit_format":"diff","tests_outcomes":"oops","cost":"not-a-number"}`))
	if err != nil {
		t.Fatal(err)
	}
	if missing := r.MissingRequired(); missing != nil {
		t.Errorf("MissingRequired = %v, want none (validation is presence-only)", missing)
	}
}

func TestRecord_OutcomeTruthiness(t *testing.T) {
	// Older harnesses wrote 0/1 instead of booleans; non-zero numbers and
	// non-empty strings count as passes.
	r, err := ParseRecord([]byte(`{"tests_outcomes":[1,0,"pass","",null,true]}`))
	if err != nil {
		t.Fatal(err)
	}
	outcomes, ok := r.Outcomes()
	if !ok {
		t.Fatal("Outcomes: not a list")
	}
	want := []bool{true, false, true, false, false, true}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Errorf("outcomes (-want +got):\n%s", diff)
	}
	if !r.AnyPassed() {
		t.Error("AnyPassed should be true for a numeric pass")
	}
}

func TestRecord_ModelDefault(t *testing.T) {
	r, _ := ParseRecord([]byte(`{}`))
	if r.Model() != "unknown" {
		t.Errorf("Model = %q, want unknown", r.Model())
	}
}

func TestRecord_NumberTextPreserved(t *testing.T) {
	r, err := ParseRecord([]byte(`{"cost":0.1,"count":7}`))
	if err != nil {
		t.Fatal(err)
	}
	cost, ok := r.Fields["cost"].(json.Number)
	if !ok {
		t.Fatalf("cost is %T, want json.Number", r.Fields["cost"])
	}
	if cost.String() != "0.1" {
		t.Errorf("cost text = %q, want 0.1", cost.String())
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"cost":0.1,"count":7}` {
		t.Errorf("round trip = %s", out)
	}
}

func TestRecord_SetAndEnrichmentKeys(t *testing.T) {
	r, _ := ParseRecord([]byte(`{}`))
	r.Set(KeyUUID, "U1")
	r.Set(KeyHash, "H1")
	r.Set(KeyRelPath, "go/leap")

	if r.StringOr(KeyUUID, "") != "U1" || r.StringOr(KeyHash, "") != "H1" {
		t.Errorf("enrichment fields not set: %+v", r.Fields)
	}
}
