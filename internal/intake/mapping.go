package intake

import (
	"strings"
	"time"

	"medinote-gateway/pkg/api"
)

// Form vocabulary. The schedule tags and dosage forms are the fixed options
// the product exposes; parser output is normalized into them.
const (
	DosageFormCapsule = "캡슐"
	DosageFormTablet  = "정제"
	DosageFormSyrup   = "시럽"

	ScheduleTagOther = "기타"
)

var ScheduleOptions = []string{"아침", "점심", "저녁", "취침전", "증상시", ScheduleTagOther}

// MedForm is the medication entry form backing both manual input and OCR
// autofill.
type MedForm struct {
	Name           string   `json:"name"`
	DosageForm     string   `json:"dosage_form"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule string   `json:"custom_schedule"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}

func DefaultMedForm(now time.Time) MedForm {
	today := now.Format("2006-01-02")
	return MedForm{
		DosageForm: DosageFormTablet,
		Unit:       "mg",
		StartDate:  today,
		EndDate:    today,
	}
}

// NormalizeDosageForm maps free parser text onto the closed dosage form set
// by substring match; anything unrecognized becomes a tablet.
func NormalizeDosageForm(value string) string {
	text := strings.ToLower(value)
	switch {
	case strings.Contains(text, DosageFormCapsule), strings.Contains(text, "capsule"):
		return DosageFormCapsule
	case strings.Contains(text, DosageFormSyrup), strings.Contains(text, "syrup"):
		return DosageFormSyrup
	default:
		return DosageFormTablet
	}
}

// HasParsedValues reports whether the parser populated any field of the
// record. Records failing this check are discarded before display.
func HasParsedValues(p api.PrescriptionParsedItem) bool {
	for _, tag := range p.Schedule {
		if strings.TrimSpace(tag) != "" {
			return true
		}
	}
	return strings.TrimSpace(p.MedName) != "" ||
		strings.TrimSpace(p.DosageForm) != "" ||
		strings.TrimSpace(p.Dose) != "" ||
		strings.TrimSpace(p.Unit) != "" ||
		strings.TrimSpace(p.CustomSchedule) != "" ||
		strings.TrimSpace(p.StartDate) != "" ||
		strings.TrimSpace(p.EndDate) != ""
}

// MergeParsed overlays a parsed record onto the current form. Absent fields
// keep the previous value rather than clearing it, and a custom schedule adds
// the 기타 tag when missing.
func MergeParsed(p api.PrescriptionParsedItem, prev MedForm) MedForm {
	next := prev

	schedule := make([]string, 0, len(p.Schedule)+1)
	for _, tag := range p.Schedule {
		if strings.TrimSpace(tag) != "" {
			schedule = append(schedule, tag)
		}
	}
	custom := strings.TrimSpace(p.CustomSchedule)
	if custom != "" && !containsTag(schedule, ScheduleTagOther) {
		schedule = append(schedule, ScheduleTagOther)
	}

	if p.MedName != "" {
		next.Name = p.MedName
	}
	if p.DosageForm != "" {
		next.DosageForm = NormalizeDosageForm(p.DosageForm)
	}
	if p.Dose != "" {
		next.Dose = p.Dose
	}
	if p.Unit != "" {
		next.Unit = p.Unit
	}
	if len(schedule) > 0 {
		next.Schedule = schedule
	}
	if custom != "" {
		next.CustomSchedule = custom
	}
	if p.StartDate != "" {
		next.StartDate = p.StartDate
	}
	if p.EndDate != "" {
		next.EndDate = p.EndDate
	}
	return next
}

// SplitSchedule separates the fixed schedule tags from the free-text custom
// entry: the 기타 tag itself is never submitted, only its text, and the text
// is dropped when 기타 is not selected.
func (f MedForm) SplitSchedule() (tags []string, custom string) {
	for _, tag := range f.Schedule {
		if tag != ScheduleTagOther {
			tags = append(tags, tag)
		}
	}
	if containsTag(f.Schedule, ScheduleTagOther) {
		custom = strings.TrimSpace(f.CustomSchedule)
	}
	return tags, custom
}

// PrescriptionCreate converts the form into a create request for the core API.
func (f MedForm) PrescriptionCreate() api.PrescriptionCreate {
	tags, custom := f.SplitSchedule()
	req := api.PrescriptionCreate{
		MedName:    f.Name,
		DosageForm: f.DosageForm,
		Dose:       f.Dose,
		Unit:       f.Unit,
		Schedule:   tags,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
	}
	if custom != "" {
		req.CustomSchedule = &custom
	}
	return req
}

func (f MedForm) DrugCreate() api.DrugCreate {
	tags, custom := f.SplitSchedule()
	return api.DrugCreate{
		MedName:        f.Name,
		DosageForm:     f.DosageForm,
		Dose:           f.Dose,
		Unit:           f.Unit,
		Schedule:       tags,
		CustomSchedule: custom,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
	}
}

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// HistoryForm is the visit record form filled by the visit OCR scan and the
// voice flow.
type HistoryForm struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Hospital string `json:"hospital"`
	Doctor   string `json:"doctor"`
	Symptoms string `json:"symptoms"`
	Notes    string `json:"notes"`
}

// MapVisitParsed maps the parser's visit schema onto the history form. The
// diagnosis name doubles as the record title.
func MapVisitParsed(p api.VisitParsed) HistoryForm {
	return HistoryForm{
		Title:    p.DiagnosisName,
		Date:     p.Date,
		Hospital: p.Hospital,
		Doctor:   p.DoctorName,
		Symptoms: p.Symptom,
		Notes:    p.Opinion,
	}
}

func (h HistoryForm) HasAnyValue() bool {
	for _, v := range []string{h.Title, h.Date, h.Hospital, h.Doctor, h.Symptoms, h.Notes} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
