// Package engine applies typed operations to the application document. It is
// pure state transformation: no storage, no locking, no HTTP. The server-side
// coordinator and the optimistic client both run the exact same code, which is
// what keeps the client's optimistic projection from drifting away from what
// the server will actually do.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

// Operation kinds, matching the wire protocol's "type" field.
const (
	OpRegisterYouth    = "REGISTER_YOUTH"
	OpUnregisterYouth  = "UNREGISTER_YOUTH"
	OpAddActivity      = "ADD_ACTIVITY"
	OpUpdateActivity   = "UPDATE_ACTIVITY"
	OpDeleteActivity   = "DELETE_ACTIVITY"
	OpAddService       = "ADD_SERVICE"
	OpUpdateService    = "UPDATE_SERVICE"
	OpDeleteService    = "DELETE_SERVICE"
	OpSetTheme         = "SET_THEME"
	OpSetAdminPassword = "SET_ADMIN_PASSWORD"
)

// ErrUnknownOperation aborts the whole transaction: nothing is written.
var ErrUnknownOperation = errors.New("invalid action type")

// Operation is the request envelope: a kind plus a kind-specific payload.
type Operation struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewOperation builds an envelope from a payload value.
func NewOperation(kind string, payload any) (Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Operation{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Operation{Type: kind, Payload: raw}, nil
}

type RegisterPayload struct {
	ActivityID   int64                   `json:"activityId"`
	Registration models.RegistrationForm `json:"registrationData"`
}

type UnregisterPayload struct {
	ActivityID     int64 `json:"activityId"`
	RegistrationID int64 `json:"registrationId"`
}

// ActivityForm carries every activity field except id and registrations.
type ActivityForm struct {
	Title          string                     `json:"title"`
	Description    string                     `json:"description"`
	Date           string                     `json:"date"`
	EndDate        string                     `json:"endDate,omitempty"`
	StartTime      string                     `json:"startTime"`
	EndTime        string                     `json:"endTime"`
	Spots          int                        `json:"spots"`
	AgeRestriction string                     `json:"ageRestriction,omitempty"`
	Allocations    []models.ServiceAllocation `json:"serviceAllocations"`
}

// ActivityPatch is a shallow merge: only non-nil fields are applied.
type ActivityPatch struct {
	Title          *string                     `json:"title,omitempty"`
	Description    *string                     `json:"description,omitempty"`
	Date           *string                     `json:"date,omitempty"`
	EndDate        *string                     `json:"endDate,omitempty"`
	StartTime      *string                     `json:"startTime,omitempty"`
	EndTime        *string                     `json:"endTime,omitempty"`
	Spots          *int                        `json:"spots,omitempty"`
	AgeRestriction *string                     `json:"ageRestriction,omitempty"`
	Allocations    *[]models.ServiceAllocation `json:"serviceAllocations,omitempty"`
}

type UpdateActivityPayload struct {
	ID   int64         `json:"id"`
	Data ActivityPatch `json:"data"`
}

type DeleteActivityPayload struct {
	ID int64 `json:"id"`
}

type UpdateServicePayload struct {
	Name    string `json:"name"`
	NewCode string `json:"newCode"`
}

type DeleteServicePayload struct {
	Name string `json:"name"`
}

// Apply mutates doc according to op. Callers must hand in a disposable copy
// (see models.AppData.Clone): on error the copy may be partially modified and
// must be discarded.
func Apply(doc *models.AppData, op Operation) error {
	switch op.Type {
	case OpRegisterYouth:
		var p RegisterPayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyRegister(doc, p)
	case OpUnregisterYouth:
		var p UnregisterPayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyUnregister(doc, p)
	case OpAddActivity:
		var p ActivityForm
		if err := decode(op, &p); err != nil {
			return err
		}
		applyAddActivity(doc, p)
	case OpUpdateActivity:
		var p UpdateActivityPayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyUpdateActivity(doc, p)
	case OpDeleteActivity:
		var p DeleteActivityPayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyDeleteActivity(doc, p.ID)
	case OpAddService:
		var p models.Service
		if err := decode(op, &p); err != nil {
			return err
		}
		applyAddService(doc, p)
	case OpUpdateService:
		var p UpdateServicePayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyUpdateService(doc, p)
	case OpDeleteService:
		var p DeleteServicePayload
		if err := decode(op, &p); err != nil {
			return err
		}
		applyDeleteService(doc, p.Name)
	case OpSetTheme:
		var t models.Theme
		if err := decode(op, &t); err != nil {
			return err
		}
		doc.CurrentTheme = &t
	case OpSetAdminPassword:
		var pw string
		if err := decode(op, &pw); err != nil {
			return err
		}
		doc.AdminPassword = pw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
	return nil
}

func decode(op Operation, into any) error {
	if err := json.Unmarshal(op.Payload, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", op.Type, err)
	}
	return nil
}

// Capacity is deliberately not re-checked here: the client validates before
// submitting, the server only serializes the write. Concurrent clients working
// from the same stale snapshot can therefore jointly exceed capacity.
func applyRegister(doc *models.AppData, p RegisterPayload) {
	act := findActivity(doc, p.ActivityID)
	if act == nil {
		return
	}
	act.Registrations = append(act.Registrations, models.Registration{
		ID:         NextToken(),
		FirstName:  p.Registration.FirstName,
		LastName:   p.Registration.LastName,
		YouthAge:   p.Registration.YouthAge,
		Department: p.Registration.Department,
		Comment:    p.Registration.Comment,
	})
}

func applyUnregister(doc *models.AppData, p UnregisterPayload) {
	act := findActivity(doc, p.ActivityID)
	if act == nil {
		return
	}
	kept := act.Registrations[:0]
	for _, r := range act.Registrations {
		if r.ID != p.RegistrationID {
			kept = append(kept, r)
		}
	}
	act.Registrations = kept
}

func applyAddActivity(doc *models.AppData, form ActivityForm) {
	act := activityFromForm(form)
	act.ID = NextToken()
	act.Registrations = []models.Registration{}
	doc.Activities = append(doc.Activities, act)
	sortActivities(doc)
}

func applyUpdateActivity(doc *models.AppData, p UpdateActivityPayload) {
	act := findActivity(doc, p.ID)
	if act == nil {
		return
	}
	mergePatch(act, p.Data)
	if act.EndDate == act.Date {
		act.EndDate = ""
	}
	sortActivities(doc)
}

func applyDeleteActivity(doc *models.AppData, id int64) {
	kept := doc.Activities[:0]
	for _, a := range doc.Activities {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	doc.Activities = kept
}

func applyAddService(doc *models.AppData, svc models.Service) {
	for _, s := range doc.Services {
		if strings.EqualFold(s.Name, svc.Name) {
			return
		}
	}
	doc.Services = append(doc.Services, svc)
	sort.SliceStable(doc.Services, func(i, j int) bool {
		return strings.ToLower(doc.Services[i].Name) < strings.ToLower(doc.Services[j].Name)
	})
}

func applyUpdateService(doc *models.AppData, p UpdateServicePayload) {
	for i := range doc.Services {
		if doc.Services[i].Name == p.Name {
			doc.Services[i].Code = p.NewCode
			return
		}
	}
}

// Deleting a service strips its allocations everywhere and recomputes each
// touched activity's total spots. Past registrations keep their department
// string: referential integrity is soft.
func applyDeleteService(doc *models.AppData, name string) {
	kept := doc.Services[:0]
	for _, s := range doc.Services {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	doc.Services = kept

	for i := range doc.Activities {
		act := &doc.Activities[i]
		if len(act.Allocations) == 0 {
			continue
		}
		remaining := make([]models.ServiceAllocation, 0, len(act.Allocations))
		for _, alloc := range act.Allocations {
			if alloc.ServiceName != name {
				remaining = append(remaining, alloc)
			}
		}
		if len(remaining) == len(act.Allocations) {
			continue
		}
		act.Allocations = remaining
		total := 0
		for _, alloc := range remaining {
			total += alloc.Spots
		}
		act.Spots = total
	}
}

func activityFromForm(form ActivityForm) models.Activity {
	endDate := form.EndDate
	if endDate == form.Date {
		endDate = ""
	}
	allocs := form.Allocations
	if allocs == nil {
		allocs = []models.ServiceAllocation{}
	}
	return models.Activity{
		Title:          form.Title,
		Description:    form.Description,
		Date:           form.Date,
		EndDate:        endDate,
		StartTime:      form.StartTime,
		EndTime:        form.EndTime,
		Spots:          form.Spots,
		AgeRestriction: form.AgeRestriction,
		Allocations:    allocs,
	}
}

func mergePatch(act *models.Activity, p ActivityPatch) {
	if p.Title != nil {
		act.Title = *p.Title
	}
	if p.Description != nil {
		act.Description = *p.Description
	}
	if p.Date != nil {
		act.Date = *p.Date
	}
	if p.EndDate != nil {
		act.EndDate = *p.EndDate
	}
	if p.StartTime != nil {
		act.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		act.EndTime = *p.EndTime
	}
	if p.Spots != nil {
		act.Spots = *p.Spots
	}
	if p.AgeRestriction != nil {
		act.AgeRestriction = *p.AgeRestriction
	}
	if p.Allocations != nil {
		act.Allocations = *p.Allocations
	}
}

// Stored order is by date only; the stable sort keeps insertion order within a
// day. Schedule generation additionally orders by start time for display.
func sortActivities(doc *models.AppData) {
	sort.SliceStable(doc.Activities, func(i, j int) bool {
		return doc.Activities[i].Date < doc.Activities[j].Date
	})
}

func findActivity(doc *models.AppData, id int64) *models.Activity {
	for i := range doc.Activities {
		if doc.Activities[i].ID == id {
			return &doc.Activities[i]
		}
	}
	return nil
}
