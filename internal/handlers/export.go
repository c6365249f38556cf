package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/document"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

const icsProductID = "-//Zone Inscriptions//Planning//FR"

// ExportHandler produces the downloadable admin reports: per-activity
// registration lists as CSV and the whole schedule as CSV or ICS. All of them
// read the document and never mutate it.
type ExportHandler struct {
	repo *document.Repository
}

func NewExportHandler(repo *document.Repository) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// HandleRegistrationsCSV writes the registration list of one activity,
// selected with ?activity=<id>.
func (h *ExportHandler) HandleRegistrationsCSV(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("activity"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid activity id", http.StatusBadRequest)
		return
	}
	data, err := h.repo.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	act := findActivity(data, id)
	if act == nil {
		http.Error(w, "Activity not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=inscriptions_%d.csv", act.ID))

	cw := csv.NewWriter(w)
	writeRow(cw, "Prénom", "Nom", "Âge", "Service", "Commentaire")
	for _, reg := range act.Registrations {
		writeRow(cw, reg.FirstName, reg.LastName, reg.YouthAge, reg.Department, reg.Comment)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// HandleScheduleCSV writes every activity, one row each, in schedule order.
func (h *ExportHandler) HandleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.repo.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=planning.csv")

	cw := csv.NewWriter(w)
	writeRow(cw, "Date", "Début", "Fin", "Activité", "Places", "Inscrits")
	for _, act := range scheduleOrder(data.Activities) {
		writeRow(cw, act.Date, act.StartTime, act.EndTime, act.Title,
			strconv.Itoa(act.Spots), strconv.Itoa(len(act.Registrations)))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// HandleScheduleICS writes the schedule as an iCalendar file so admins can
// import it into their calendar apps.
func (h *ExportHandler) HandleScheduleICS(w http.ResponseWriter, r *http.Request) {
	data, err := h.repo.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=planning.ics")

	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", icsProductID)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	for _, act := range scheduleOrder(data.Activities) {
		start, err := time.Parse("2006-01-02 15:04", act.Date+" "+act.StartTime)
		if err != nil {
			continue
		}
		endDate := act.Date
		if act.EndDate != "" {
			endDate = act.EndDate
		}
		end, err := time.Parse("2006-01-02 15:04", endDate+" "+act.EndTime)
		if err != nil {
			continue
		}

		fmt.Fprintln(w, "BEGIN:VEVENT")
		fmt.Fprintf(w, "UID:%d@zone-inscriptions\n", act.ID)
		fmt.Fprintf(w, "DTSTAMP:%s\n", time.Now().UTC().Format("20060102T150405Z"))
		fmt.Fprintf(w, "DTSTART:%s\n", start.Format("20060102T150405"))
		fmt.Fprintf(w, "DTEND:%s\n", end.Format("20060102T150405"))
		fmt.Fprintf(w, "SUMMARY:%s\n", act.Title)
		fmt.Fprintf(w, "DESCRIPTION:%s\n", act.Description)
		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}

func scheduleOrder(activities []models.Activity) []models.Activity {
	sorted := append([]models.Activity(nil), activities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

func writeRow(cw *csv.Writer, fields ...string) {
	if err := cw.Write(fields); err != nil {
		log.Printf("Error writing CSV row: %v", err)
	}
}
