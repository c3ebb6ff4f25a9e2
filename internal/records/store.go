// Package records holds the in-memory health record stores. Each list is
// owned by one store and mutated only through its methods, so ordering stays
// enforceable in one place.
package records

import (
	"strconv"
	"strings"
	"sync"

	"medinote-gateway/pkg/api"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

const (
	MedTypePrescription = "prescription"
	MedTypeSupplement   = "supplement"
)

// Medication is the UI-facing shape of one medication entry.
type Medication struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	DosageForm string `json:"dosage_form"`
	Dose       string `json:"dose"`
	Unit       string `json:"unit"`
	Schedule   string `json:"schedule"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type MedicationStore struct {
	mu    sync.RWMutex
	items []Medication
}

func NewMedicationStore() *MedicationStore { return &MedicationStore{} }

func (s *MedicationStore) Add(meds ...Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, meds...)
}

// Replace swaps the whole list, used for initial loads and refreshes.
func (s *MedicationStore) Replace(meds []Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Medication(nil), meds...)
}

func (s *MedicationStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, med := range s.items {
		if med.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MedicationStore) List() []Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Medication(nil), s.items...)
}

// joinSchedule renders the schedule tags plus any custom entry as one display
// string.
func joinSchedule(tags []string, custom string) string {
	parts := append([]string(nil), tags...)
	if custom != "" {
		parts = append(parts, custom)
	}
	return strings.Join(parts, ", ")
}

func MedicationFromDrug(item api.DrugItem) Medication {
	return Medication{
		ID:         "d_" + formatID(item.DrugID),
		Name:       item.MedName,
		Type:       MedTypeSupplement,
		DosageForm: item.DosageForm,
		Dose:       item.Dose,
		Unit:       item.Unit,
		Schedule:   joinSchedule(item.Schedule, item.CustomSchedule),
		StartDate:  item.StartDate,
		EndDate:    item.EndDate,
	}
}

func MedicationFromPrescription(item api.PrescriptionItem) Medication {
	return Medication{
		ID:         "p_" + formatID(item.PrescriptionID),
		Name:       item.MedName,
		Type:       MedTypePrescription,
		DosageForm: item.DosageForm,
		Dose:       item.Dose,
		Unit:       item.Unit,
		Schedule:   joinSchedule(item.Schedule, item.CustomSchedule),
		StartDate:  item.StartDate,
		EndDate:    item.EndDate,
	}
}

// VisitRecord is the UI-facing shape of one visit/history entry.
type VisitRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Hospital string `json:"hospital"`
	Doctor   string `json:"doctor"`
	Symptoms string `json:"symptoms"`
	Notes    string `json:"notes"`
}

type VisitStore struct {
	mu    sync.RWMutex
	items []VisitRecord
}

func NewVisitStore() *VisitStore { return &VisitStore{} }

func (s *VisitStore) Add(visits ...VisitRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, visits...)
}

func (s *VisitStore) Replace(visits []VisitRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]VisitRecord(nil), visits...)
}

func (s *VisitStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, visit := range s.items {
		if visit.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *VisitStore) List() []VisitRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]VisitRecord(nil), s.items...)
}

func VisitRecordFromItem(item api.VisitItem) VisitRecord {
	return VisitRecord{
		ID:       "v_" + formatID(item.VisitID),
		Title:    item.Title,
		Date:     item.Date,
		Hospital: item.Hospital,
		Doctor:   item.Doctor,
		Symptoms: item.Symptoms,
		Notes:    item.Notes,
	}
}
