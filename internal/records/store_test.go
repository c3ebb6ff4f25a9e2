package records

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medinote-gateway/pkg/api"
)

func TestMedicationFromDrug(t *testing.T) {
	med := MedicationFromDrug(api.DrugItem{
		DrugID:         3,
		MedName:        "오메가3",
		DosageForm:     "캡슐",
		Dose:           "1000",
		Unit:           "mg",
		Schedule:       []string{"아침", "저녁"},
		CustomSchedule: "식후",
		StartDate:      "2025-03-01",
		EndDate:        "2025-06-01",
	})

	assert.Equal(t, "d_3", med.ID)
	assert.Equal(t, MedTypeSupplement, med.Type)
	assert.Equal(t, "아침, 저녁, 식후", med.Schedule)
}

func TestMedicationFromPrescription(t *testing.T) {
	med := MedicationFromPrescription(api.PrescriptionItem{
		PrescriptionID: 9,
		MedName:        "아스피린",
		Schedule:       []string{"아침"},
	})

	assert.Equal(t, "p_9", med.ID)
	assert.Equal(t, MedTypePrescription, med.Type)
	assert.Equal(t, "아침", med.Schedule)
}

func TestMedicationStoreMutation(t *testing.T) {
	store := NewMedicationStore()
	store.Add(Medication{ID: "d_1"}, Medication{ID: "p_2"})

	assert.Len(t, store.List(), 2)

	assert.True(t, store.Remove("d_1"))
	assert.False(t, store.Remove("d_1"))
	assert.Len(t, store.List(), 1)
	assert.Equal(t, "p_2", store.List()[0].ID)

	store.Replace([]Medication{{ID: "d_5"}})
	assert.Len(t, store.List(), 1)
	assert.Equal(t, "d_5", store.List()[0].ID)

	// List returns a copy; mutating it does not touch the store.
	list := store.List()
	list[0].ID = "mutated"
	assert.Equal(t, "d_5", store.List()[0].ID)
}

func TestVisitStore(t *testing.T) {
	store := NewVisitStore()
	store.Add(VisitRecordFromItem(api.VisitItem{
		VisitID:  12,
		Title:    "감기",
		Hospital: "서울병원",
		Date:     "2025-03-14",
	}))

	visits := store.List()
	if assert.Len(t, visits, 1) {
		assert.Equal(t, "v_12", visits[0].ID)
		assert.Equal(t, "감기", visits[0].Title)
	}

	assert.True(t, store.Remove("v_12"))
	assert.Empty(t, store.List())
}
