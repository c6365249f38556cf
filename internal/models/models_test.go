package models

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestClone_KeepsEmptySlicesNonNil(t *testing.T) {
	// The clone is what gets persisted; nil slices marshal to JSON null,
	// which the completeness check treats as a missing part.
	clone := Default().Clone()
	if clone.Activities == nil || clone.Services == nil {
		t.Fatalf("clone turned empty lists into nil: %+v", clone)
	}

	raw, err := json.Marshal(clone)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(raw, []byte(`"services":null`)) || bytes.Contains(raw, []byte(`"activities":null`)) {
		t.Errorf("clone marshals empty lists as null: %s", raw)
	}

	var back AppData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Complete() {
		t.Error("round-tripped clone is no longer complete")
	}
}

func TestClone_IsDeep(t *testing.T) {
	doc := Default()
	doc.Services = []Service{{Name: "Foyer A", Code: "aaa"}}
	doc.Activities = []Activity{{
		ID:            1,
		Title:         "Sortie",
		Registrations: []Registration{{ID: 100, FirstName: "Léa"}},
		Allocations:   []ServiceAllocation{{ServiceName: "Foyer A", Spots: 2}},
	}}

	clone := doc.Clone()
	clone.Services[0].Code = "changed"
	clone.Activities[0].Registrations[0].FirstName = "changed"
	clone.Activities[0].Allocations[0].Spots = 99
	clone.CurrentTheme.Styles["--color-bg"] = "changed"

	if doc.Services[0].Code != "aaa" {
		t.Error("service mutation leaked into the original")
	}
	if doc.Activities[0].Registrations[0].FirstName != "Léa" {
		t.Error("registration mutation leaked into the original")
	}
	if doc.Activities[0].Allocations[0].Spots != 2 {
		t.Error("allocation mutation leaked into the original")
	}
	if doc.CurrentTheme.Styles["--color-bg"] == "changed" {
		t.Error("theme mutation leaked into the original")
	}
}

func TestComplete_ThemePresenceOnly(t *testing.T) {
	doc := Default()
	doc.CurrentTheme = &Theme{Name: "Custom", Styles: map[string]string{"--color-bg": "#123"}}
	if !doc.Complete() {
		t.Error("a theme without an id must still count as present")
	}

	doc.CurrentTheme = nil
	if doc.Complete() {
		t.Error("a missing theme must make the document incomplete")
	}
}
