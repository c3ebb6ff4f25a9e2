package api

// Wire types for the core CRUD API (drugs, prescriptions, visits).
//
// The create bodies keep the mixed naming the core API grew up with: drug
// creation is snake_case throughout while prescription creation uses camelCase
// for the form fields. Responses are snake_case for both.

type DrugCreate struct {
	MedName        string   `json:"med_name"`
	DosageForm     string   `json:"dosage_form"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule string   `json:"custom_schedule,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}

type DrugItem struct {
	DrugID         int64    `json:"drug_id"`
	MedName        string   `json:"med_name"`
	DosageForm     string   `json:"dosage_form"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule string   `json:"custom_schedule,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}

type PrescriptionCreate struct {
	MedName        string   `json:"med_name"`
	DosageForm     string   `json:"dosageForm"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule *string  `json:"customSchedule"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
}

type PrescriptionItem struct {
	PrescriptionID int64    `json:"prescription_id"`
	MedName        string   `json:"med_name"`
	DosageForm     string   `json:"dosage_form"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule string   `json:"custom_schedule,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	VisitID        *int64   `json:"visit_id,omitempty"`
}

type VisitCreate struct {
	Hospital      string `json:"hospital"`
	Date          string `json:"date"`
	Dept          string `json:"dept"`
	DiagnosisCode string `json:"diagnosis_code"`
	Title         string `json:"title,omitempty"`
	Doctor        string `json:"doctor,omitempty"`
	Symptoms      string `json:"symptoms,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type VisitItem struct {
	VisitID       int64  `json:"visit_id"`
	Hospital      string `json:"hospital"`
	Date          string `json:"date"`
	Dept          string `json:"dept"`
	DiagnosisCode string `json:"diagnosis_code"`
	Title         string `json:"title,omitempty"`
	Doctor        string `json:"doctor,omitempty"`
	Symptoms      string `json:"symptoms,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
