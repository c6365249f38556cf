package models

// AppData is the whole application state: one JSON document, persisted as a
// single value and only ever mutated through the engine.
type AppData struct {
	Activities    []Activity `json:"activities"`
	Services      []Service  `json:"services"`
	AdminPassword string     `json:"adminPassword"`
	CurrentTheme  *Theme     `json:"currentTheme"`
}

type Activity struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Date           string              `json:"date"` // ISO date, inclusive start
	EndDate        string              `json:"endDate,omitempty"`
	StartTime      string              `json:"startTime"` // local HH:MM
	EndTime        string              `json:"endTime"`
	Spots          int                 `json:"spots"`
	AgeRestriction string              `json:"ageRestriction,omitempty"`
	Registrations  []Registration      `json:"registrations"`
	Allocations    []ServiceAllocation `json:"serviceAllocations"`
}

// ServiceAllocation reserves seats of an activity for one service. An activity
// with no allocations is public: open to every service up to Spots.
type ServiceAllocation struct {
	ServiceName string `json:"serviceName"`
	Spots       int    `json:"spots"`
}

type Registration struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	YouthAge   string `json:"youthAge"`
	Department string `json:"department"`
	Comment    string `json:"comment,omitempty"`
}

// RegistrationForm is a registration as submitted, before an id is assigned.
type RegistrationForm struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	YouthAge   string `json:"youthAge"`
	Department string `json:"department"`
	Comment    string `json:"comment"`
}

// Service identity is its name; renames are unsupported.
type Service struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Theme is opaque to the mutation layer beyond round-tripping: Styles carries
// whatever CSS variables the frontend defined.
type Theme struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Styles map[string]string `json:"styles"`
}

// IsPublic reports whether the activity has no per-service seat allocations.
func (a *Activity) IsPublic() bool {
	return len(a.Allocations) == 0
}

// RegisteredFor counts registrations made under the given department.
func (a *Activity) RegisteredFor(department string) int {
	n := 0
	for _, r := range a.Registrations {
		if r.Department == department {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. The coordinator applies mutations to a clone so a
// failed operation never leaves a half-modified document behind.
func (d *AppData) Clone() *AppData {
	out := &AppData{
		Activities:    make([]Activity, len(d.Activities)),
		Services:      append([]Service{}, d.Services...),
		AdminPassword: d.AdminPassword,
		CurrentTheme:  d.CurrentTheme.clone(),
	}
	for i, a := range d.Activities {
		a.Registrations = append([]Registration{}, a.Registrations...)
		a.Allocations = append([]ServiceAllocation{}, a.Allocations...)
		out.Activities[i] = a
	}
	return out
}

func (t *Theme) clone() *Theme {
	if t == nil {
		return nil
	}
	out := *t
	if t.Styles != nil {
		out.Styles = make(map[string]string, len(t.Styles))
		for k, v := range t.Styles {
			out.Styles[k] = v
		}
	}
	return &out
}

// Complete reports whether the document has every structural part. Incomplete
// documents (first boot, or a partial write from an older version) are
// replaced with Default() on read. The theme is opaque beyond presence: an
// admin-set theme without an id is still a valid document.
func (d *AppData) Complete() bool {
	return d.Activities != nil && d.Services != nil && d.AdminPassword != "" && d.CurrentTheme != nil
}

// Default is the document seeded on first read.
func Default() *AppData {
	return &AppData{
		Activities:    []Activity{},
		Services:      []Service{},
		AdminPassword: "admin2024",
		CurrentTheme:  DefaultTheme(),
	}
}
