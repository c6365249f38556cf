package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

func mustOp(t *testing.T, kind string, payload any) Operation {
	t.Helper()
	op, err := NewOperation(kind, payload)
	if err != nil {
		t.Fatalf("NewOperation(%s) returned error: %v", kind, err)
	}
	return op
}

func testDoc() *models.AppData {
	doc := models.Default()
	doc.Services = []models.Service{
		{Name: "Foyer A", Code: "aaa"},
		{Name: "Foyer B", Code: "bbb"},
	}
	doc.Activities = []models.Activity{
		{
			ID:            1,
			Title:         "Accrobranche",
			Date:          "2024-07-10",
			StartTime:     "09:00",
			EndTime:       "12:00",
			Spots:         2,
			Registrations: []models.Registration{},
			Allocations:   []models.ServiceAllocation{},
		},
		{
			ID:        2,
			Title:     "Piscine",
			Date:      "2024-07-12",
			StartTime: "14:00",
			EndTime:   "17:00",
			Spots:     5,
			Registrations: []models.Registration{
				{ID: 100, FirstName: "Léa", Department: "Foyer A"},
			},
			Allocations: []models.ServiceAllocation{
				{ServiceName: "Foyer A", Spots: 3},
				{ServiceName: "Foyer B", Spots: 2},
			},
		},
	}
	return doc
}

func TestRegisterYouth(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpRegisterYouth, RegisterPayload{
		ActivityID: 1,
		Registration: models.RegistrationForm{
			FirstName:  "Sam",
			LastName:   "Duval",
			YouthAge:   "13",
			Department: "Foyer A",
		},
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	regs := doc.Activities[0].Registrations
	if len(regs) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(regs))
	}
	if regs[0].ID == 0 {
		t.Error("expected a fresh id to be assigned")
	}
	if regs[0].FirstName != "Sam" || regs[0].Department != "Foyer A" {
		t.Errorf("unexpected registration: %+v", regs[0])
	}
}

func TestRegisterYouth_UnknownActivityIsNoop(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpRegisterYouth, RegisterPayload{
		ActivityID:   999,
		Registration: models.RegistrationForm{FirstName: "Sam", Department: "Foyer A"},
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	for _, act := range doc.Activities {
		if act.ID == 1 && len(act.Registrations) != 0 {
			t.Errorf("registrations appeared on the wrong activity: %+v", act.Registrations)
		}
	}
}

func TestRegisterYouth_UniqueIDs(t *testing.T) {
	doc := testDoc()
	for i := 0; i < 5; i++ {
		op := mustOp(t, OpRegisterYouth, RegisterPayload{
			ActivityID:   1,
			Registration: models.RegistrationForm{FirstName: "Kid", Department: "Foyer A"},
		})
		if err := Apply(doc, op); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}
	seen := map[int64]bool{}
	for _, r := range doc.Activities[0].Registrations {
		if seen[r.ID] {
			t.Fatalf("duplicate registration id %d", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestRegisterYouth_NoServerSideCapacityCheck(t *testing.T) {
	// The engine appends even past the allocation limit: capacity is only
	// validated client-side, the server just serializes the write. This
	// documents the known overbooking gap under concurrent submissions.
	doc := testDoc()
	for i := 0; i < 4; i++ {
		op := mustOp(t, OpRegisterYouth, RegisterPayload{
			ActivityID:   2,
			Registration: models.RegistrationForm{FirstName: "Jeune", Department: "Foyer A"},
		})
		if err := Apply(doc, op); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}
	// 1 seeded + 4 new, even though Foyer A only has 3 spots
	if got := len(doc.Activities[1].Registrations); got != 5 {
		t.Errorf("expected 5 registrations, got %d", got)
	}
}

func TestUnregisterYouth(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpUnregisterYouth, UnregisterPayload{ActivityID: 2, RegistrationID: 100})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(doc.Activities[1].Registrations) != 0 {
		t.Errorf("expected registration to be removed, got %+v", doc.Activities[1].Registrations)
	}

	// Unknown registration id is a no-op
	op = mustOp(t, OpUnregisterYouth, UnregisterPayload{ActivityID: 2, RegistrationID: 4242})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
}

func TestAddActivity_SortsAndDropsEndDate(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpAddActivity, ActivityForm{
		Title:     "Veillée",
		Date:      "2024-07-11",
		EndDate:   "2024-07-11", // same day, must be dropped
		StartTime: "20:00",
		EndTime:   "22:00",
		Spots:     10,
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if len(doc.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(doc.Activities))
	}
	for i := 1; i < len(doc.Activities); i++ {
		if doc.Activities[i-1].Date > doc.Activities[i].Date {
			t.Fatalf("activities out of date order: %s before %s", doc.Activities[i-1].Date, doc.Activities[i].Date)
		}
	}

	added := doc.Activities[1]
	if added.Title != "Veillée" {
		t.Fatalf("expected new activity in the middle, got %q", added.Title)
	}
	if added.ID == 0 {
		t.Error("expected a fresh id")
	}
	if added.EndDate != "" {
		t.Errorf("expected endDate to be dropped, got %q", added.EndDate)
	}
	if added.Registrations == nil || len(added.Registrations) != 0 {
		t.Errorf("expected empty registrations, got %+v", added.Registrations)
	}
}

func TestAddActivity_KeepsMultiDayEndDate(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpAddActivity, ActivityForm{
		Title:     "Camp",
		Date:      "2024-07-15",
		EndDate:   "2024-07-17",
		StartTime: "08:00",
		EndTime:   "18:00",
		Spots:     12,
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	added := doc.Activities[len(doc.Activities)-1]
	if added.EndDate != "2024-07-17" {
		t.Errorf("expected endDate kept, got %q", added.EndDate)
	}
}

func TestUpdateActivity_MergeAndResort(t *testing.T) {
	doc := testDoc()
	newDate := "2024-07-20"
	newSpots := 8
	op := mustOp(t, OpUpdateActivity, UpdateActivityPayload{
		ID:   1,
		Data: ActivityPatch{Date: &newDate, Spots: &newSpots},
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	// Activity 1 moved after activity 2
	if doc.Activities[1].ID != 1 {
		t.Fatalf("expected activity 1 to re-sort to the end, order: %d, %d", doc.Activities[0].ID, doc.Activities[1].ID)
	}
	updated := doc.Activities[1]
	if updated.Date != newDate || updated.Spots != newSpots {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Title != "Accrobranche" {
		t.Errorf("untouched field changed: %q", updated.Title)
	}
}

func TestUpdateActivity_CollapsedEndDateDropped(t *testing.T) {
	doc := testDoc()
	doc.Activities[0].EndDate = "2024-07-11"
	endDate := "2024-07-10" // same as date: single-day again
	op := mustOp(t, OpUpdateActivity, UpdateActivityPayload{
		ID:   1,
		Data: ActivityPatch{EndDate: &endDate},
	})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc.Activities[0].EndDate != "" {
		t.Errorf("expected collapsed endDate to be dropped, got %q", doc.Activities[0].EndDate)
	}
}

func TestUpdateActivity_UnknownIDIsNoop(t *testing.T) {
	doc := testDoc()
	title := "Nouveau titre"
	op := mustOp(t, OpUpdateActivity, UpdateActivityPayload{ID: 999, Data: ActivityPatch{Title: &title}})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc.Activities[0].Title == title || doc.Activities[1].Title == title {
		t.Error("patch applied to the wrong activity")
	}
}

func TestDeleteActivity(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpDeleteActivity, DeleteActivityPayload{ID: 1})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(doc.Activities) != 1 || doc.Activities[0].ID != 2 {
		t.Errorf("unexpected activities after delete: %+v", doc.Activities)
	}
}

func TestAddService_DuplicateIgnoredCaseInsensitive(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpAddService, models.Service{Name: "FOYER A", Code: "zzz"})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(doc.Services) != 2 {
		t.Fatalf("duplicate service was added: %+v", doc.Services)
	}
	if doc.Services[0].Code != "aaa" {
		t.Error("existing service code was overwritten")
	}
}

func TestAddService_SortedByName(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpAddService, models.Service{Name: "Antenne", Code: "ccc"})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc.Services[0].Name != "Antenne" {
		t.Errorf("expected services sorted by name, got %+v", doc.Services)
	}
}

func TestUpdateService(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpUpdateService, UpdateServicePayload{Name: "Foyer A", NewCode: "secret"})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if doc.Services[0].Code != "secret" {
		t.Errorf("code not updated: %+v", doc.Services[0])
	}
}

func TestDeleteService_StripsAllocationsAndRecomputesSpots(t *testing.T) {
	doc := testDoc()
	op := mustOp(t, OpDeleteService, DeleteServicePayload{Name: "Foyer A"})
	if err := Apply(doc, op); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if len(doc.Services) != 1 || doc.Services[0].Name != "Foyer B" {
		t.Fatalf("unexpected services: %+v", doc.Services)
	}

	act := doc.Activities[1]
	if len(act.Allocations) != 1 || act.Allocations[0].ServiceName != "Foyer B" {
		t.Fatalf("unexpected allocations: %+v", act.Allocations)
	}
	if act.Spots != 2 {
		t.Errorf("expected spots recomputed to 2, got %d", act.Spots)
	}
	// Past registrations under the deleted service stay
	if len(act.Registrations) != 1 || act.Registrations[0].Department != "Foyer A" {
		t.Errorf("existing registrations must be untouched: %+v", act.Registrations)
	}
	// Public activity untouched
	if doc.Activities[0].Spots != 2 {
		t.Errorf("public activity spots changed: %d", doc.Activities[0].Spots)
	}
}

func TestSetThemeAndPassword(t *testing.T) {
	doc := testDoc()
	theme := models.Theme{ID: "neon", Name: "Néon", Styles: map[string]string{"--color-bg": "#000"}}
	if err := Apply(doc, mustOp(t, OpSetTheme, theme)); err != nil {
		t.Fatalf("SET_THEME returned error: %v", err)
	}
	if doc.CurrentTheme.ID != "neon" || doc.CurrentTheme.Styles["--color-bg"] != "#000" {
		t.Errorf("theme not applied: %+v", doc.CurrentTheme)
	}

	if err := Apply(doc, mustOp(t, OpSetAdminPassword, "nouveau")); err != nil {
		t.Fatalf("SET_ADMIN_PASSWORD returned error: %v", err)
	}
	if doc.AdminPassword != "nouveau" {
		t.Errorf("password not applied: %q", doc.AdminPassword)
	}
}

func TestUnknownOperation(t *testing.T) {
	doc := testDoc()
	err := Apply(doc, Operation{Type: "FROBNICATE", Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	theme := models.Theme{ID: "x", Name: "X", Styles: map[string]string{"--custom": "1px"}}
	raw, err := json.Marshal(theme)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back models.Theme
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Styles["--custom"] != "1px" {
		t.Errorf("theme did not round-trip: %+v", back)
	}
}
