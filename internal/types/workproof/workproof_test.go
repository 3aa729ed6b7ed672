package workproof

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestStatusDerivation(t *testing.T) {
	cases := []struct {
		name          string
		verifications map[string]Verification
		want          Status
	}{
		{"no verifications", nil, StatusPending},
		{"empty map", map[string]Verification{}, StatusPending},
		{"single accepted", map[string]Verification{"0xB": {Accepted: true}}, StatusVerified},
		{"single rejected", map[string]Verification{"0xB": {Accepted: false, Reason: "no evidence"}}, StatusReverted},
		{"mixed verdicts", map[string]Verification{
			"0xB": {Accepted: true},
			"0xC": {Accepted: false},
		}, StatusReverted},
		{"unanimous approval", map[string]Verification{
			"0xB": {Accepted: true},
			"0xC": {Accepted: true},
		}, StatusVerified},
	}

	for _, tc := range cases {
		p := &WorkProof{Verifications: tc.verifications}
		if got := p.Status(); got != tc.want {
			t.Errorf("%s: expected status %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestWeightDecodingDefaultsToZero(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Weight
	}{
		{"numeric", `{"weight": 10}`, 10},
		{"fractional", `{"weight": 2.5}`, 2.5},
		{"absent", `{}`, 0},
		{"string", `{"weight": "ten"}`, 0},
		{"null", `{"weight": null}`, 0},
		{"object", `{"weight": {"value": 10}}`, 0},
	}

	for _, tc := range cases {
		var p WorkProof
		if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
			t.Fatalf("%s: unexpected decode error: %v", tc.name, err)
		}
		if p.Weight != tc.want {
			t.Errorf("%s: expected weight %v, got %v", tc.name, tc.want, p.Weight)
		}
	}
}

func TestWeightFromAny(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  Weight
	}{
		{"float64", float64(2.5), 2.5},
		{"int64", int64(10), 10},
		{"int", 3, 3},
		{"nil", nil, 0},
		{"string", "ten", 0},
		{"map", map[string]any{"value": 10}, 0},
		{"bool", true, 0},
	}

	for _, tc := range cases {
		if got := WeightFromAny(tc.value); got != tc.want {
			t.Errorf("%s: expected weight %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestVerifierDiff(t *testing.T) {
	before := &WorkProof{Verifications: map[string]Verification{
		"0xB": {Accepted: true},
		"0xC": {Accepted: false},
	}}
	after := &WorkProof{Verifications: map[string]Verification{
		"0xB": {Accepted: false}, // changed verdict, same presence
		"0xD": {Accepted: true},  // added
	}}

	diff := VerifierDiff(before, after)
	sort.Strings(diff)

	want := []string{"0xC", "0xD"}
	if len(diff) != len(want) {
		t.Fatalf("expected diff %v, got %v", want, diff)
	}
	for i := range want {
		if diff[i] != want[i] {
			t.Fatalf("expected diff %v, got %v", want, diff)
		}
	}
}

func TestVerifierDiffNilSides(t *testing.T) {
	p := &WorkProof{Verifications: map[string]Verification{"0xB": {Accepted: true}}}

	if diff := VerifierDiff(nil, p); len(diff) != 1 || diff[0] != "0xB" {
		t.Errorf("create: expected [0xB], got %v", diff)
	}
	if diff := VerifierDiff(p, nil); len(diff) != 1 || diff[0] != "0xB" {
		t.Errorf("delete: expected [0xB], got %v", diff)
	}
	if diff := VerifierDiff(nil, nil); len(diff) != 0 {
		t.Errorf("both nil: expected empty diff, got %v", diff)
	}
}
