package handlers

import (
	"context"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/auth"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/document"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

// ScheduleHandler serves the admin schedule view: activities grouped by day.
// Unlike the stored order (date only), the schedule also orders by start time
// within a day.
type ScheduleHandler struct {
	repo *document.Repository
	auth *auth.AuthHandler
}

func NewScheduleHandler(repo *document.Repository, authHandler *auth.AuthHandler) *ScheduleHandler {
	return &ScheduleHandler{repo: repo, auth: authHandler}
}

type ScheduleInput struct {
	Cookie string `header:"Cookie"`
}

type ScheduleEntry struct {
	Title      string   `json:"title"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	Spots      int      `json:"spots"`
	Registered int      `json:"registered"`
	Services   []string `json:"services,omitempty"`
}

type ScheduleDay struct {
	Date       string          `json:"date"`
	Activities []ScheduleEntry `json:"activities"`
}

type ScheduleOutput struct {
	Body struct {
		Days []ScheduleDay `json:"days"`
	}
}

func (h *ScheduleHandler) HandleSchedule(ctx context.Context, input *ScheduleInput) (*ScheduleOutput, error) {
	if err := h.auth.RequireAdmin(input.Cookie); err != nil {
		return nil, err
	}
	data, err := h.repo.Get(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load data")
	}

	out := &ScheduleOutput{}
	out.Body.Days = buildSchedule(data.Activities)
	return out, nil
}

func buildSchedule(activities []models.Activity) []ScheduleDay {
	sorted := append([]models.Activity(nil), activities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	days := []ScheduleDay{}
	for _, act := range sorted {
		entry := ScheduleEntry{
			Title:      act.Title,
			StartTime:  act.StartTime,
			EndTime:    act.EndTime,
			Spots:      act.Spots,
			Registered: len(act.Registrations),
		}
		for _, alloc := range act.Allocations {
			entry.Services = append(entry.Services, alloc.ServiceName)
		}
		if n := len(days); n > 0 && days[n-1].Date == act.Date {
			days[n-1].Activities = append(days[n-1].Activities, entry)
		} else {
			days = append(days, ScheduleDay{Date: act.Date, Activities: []ScheduleEntry{entry}})
		}
	}
	return days
}
