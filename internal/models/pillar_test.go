package models

import (
	"encoding/json"
	"testing"
)

func TestParsePillar(t *testing.T) {
	for _, p := range Pillars() {
		parsed, err := ParsePillar(p.String())
		if err != nil {
			t.Fatalf("ParsePillar(%s): %v", p, err)
		}
		if parsed != p {
			t.Errorf("ParsePillar(%s) = %s", p, parsed)
		}
	}

	if _, err := ParsePillar("leisure"); err == nil {
		t.Error("expected error for unknown pillar name")
	}
}

func TestPillarJSONRejectsUnknown(t *testing.T) {
	var p Pillar
	if err := json.Unmarshal([]byte(`"gardening"`), &p); err == nil {
		t.Error("expected decode of unknown pillar to fail")
	}
	if err := json.Unmarshal([]byte(`"calmness"`), &p); err != nil {
		t.Fatalf("decode calmness: %v", err)
	}
	if p != PillarCalmness {
		t.Errorf("decoded %s, want calmness", p)
	}
}

func TestPillarAsMapKey(t *testing.T) {
	totals := map[Pillar]int{PillarHardWork: 90, PillarCalmness: 30, PillarFamily: 0}
	data, err := json.Marshal(totals)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[Pillar]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[PillarHardWork] != 90 || decoded[PillarCalmness] != 30 {
		t.Errorf("round-trip mismatch: %v", decoded)
	}
}
