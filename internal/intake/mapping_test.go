package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medinote-gateway/pkg/api"
)

func TestDefaultMedForm(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	form := DefaultMedForm(now)

	assert.Equal(t, DosageFormTablet, form.DosageForm)
	assert.Equal(t, "mg", form.Unit)
	assert.Equal(t, "2025-03-14", form.StartDate)
	assert.Equal(t, "2025-03-14", form.EndDate)
}

func TestNormalizeDosageForm(t *testing.T) {
	assert.Equal(t, DosageFormCapsule, NormalizeDosageForm("연질캡슐"))
	assert.Equal(t, DosageFormCapsule, NormalizeDosageForm("Soft Capsule"))
	assert.Equal(t, DosageFormSyrup, NormalizeDosageForm("시럽제"))
	assert.Equal(t, DosageFormSyrup, NormalizeDosageForm("dry syrup"))
	assert.Equal(t, DosageFormTablet, NormalizeDosageForm("정제"))
	assert.Equal(t, DosageFormTablet, NormalizeDosageForm("something else"))
	assert.Equal(t, DosageFormTablet, NormalizeDosageForm(""))
}

func TestMergeParsedKeepsPreviousFields(t *testing.T) {
	prev := DefaultMedForm(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	prev.Name = "타이레놀"
	prev.Dose = "500"

	merged := MergeParsed(api.PrescriptionParsedItem{
		MedName:  "아스피린",
		Schedule: []string{"아침", "저녁"},
	}, prev)

	assert.Equal(t, "아스피린", merged.Name)
	assert.Equal(t, []string{"아침", "저녁"}, merged.Schedule)
	// Fields the parser left empty keep the previous value.
	assert.Equal(t, "500", merged.Dose)
	assert.Equal(t, DosageFormTablet, merged.DosageForm)
	assert.Equal(t, "2025-03-14", merged.StartDate)
}

func TestMergeParsedCustomScheduleAddsOtherTag(t *testing.T) {
	merged := MergeParsed(api.PrescriptionParsedItem{
		MedName:        "약",
		Schedule:       []string{"아침"},
		CustomSchedule: "식후 30분",
	}, MedForm{})

	assert.Equal(t, []string{"아침", ScheduleTagOther}, merged.Schedule)
	assert.Equal(t, "식후 30분", merged.CustomSchedule)

	// Tag is not duplicated when already present.
	again := MergeParsed(api.PrescriptionParsedItem{
		Schedule:       []string{"아침", ScheduleTagOther},
		CustomSchedule: "식후 30분",
	}, MedForm{})
	assert.Equal(t, []string{"아침", ScheduleTagOther}, again.Schedule)
}

func TestSplitSchedule(t *testing.T) {
	form := MedForm{
		Schedule:       []string{"아침", "저녁", ScheduleTagOther},
		CustomSchedule: "식후 30분",
	}
	tags, custom := form.SplitSchedule()
	assert.Equal(t, []string{"아침", "저녁"}, tags)
	assert.Equal(t, "식후 30분", custom)

	// Custom text is dropped when 기타 is not selected.
	form.Schedule = []string{"아침"}
	tags, custom = form.SplitSchedule()
	assert.Equal(t, []string{"아침"}, tags)
	assert.Equal(t, "", custom)
}

func TestPrescriptionCreateOmitsEmptyCustomSchedule(t *testing.T) {
	form := MedForm{Name: "아스피린", Schedule: []string{"아침"}}
	req := form.PrescriptionCreate()
	assert.Equal(t, "아스피린", req.MedName)
	assert.Nil(t, req.CustomSchedule)

	form.Schedule = append(form.Schedule, ScheduleTagOther)
	form.CustomSchedule = "취침 1시간 전"
	req = form.PrescriptionCreate()
	if assert.NotNil(t, req.CustomSchedule) {
		assert.Equal(t, "취침 1시간 전", *req.CustomSchedule)
	}
}

func TestHasParsedValues(t *testing.T) {
	assert.False(t, HasParsedValues(api.PrescriptionParsedItem{}))
	assert.False(t, HasParsedValues(api.PrescriptionParsedItem{MedName: "  ", Schedule: []string{" "}}))
	assert.True(t, HasParsedValues(api.PrescriptionParsedItem{MedName: "아스피린"}))
	assert.True(t, HasParsedValues(api.PrescriptionParsedItem{Schedule: []string{"아침"}}))
}

func TestMapVisitParsed(t *testing.T) {
	form := MapVisitParsed(api.VisitParsed{
		Hospital:      "서울병원",
		DoctorName:    "김의사",
		Symptom:       "두통",
		Opinion:       "수분 섭취 권장",
		DiagnosisName: "편두통",
		Date:          "2025-03-14",
	})

	assert.Equal(t, "편두통", form.Title)
	assert.Equal(t, "서울병원", form.Hospital)
	assert.Equal(t, "김의사", form.Doctor)
	assert.Equal(t, "두통", form.Symptoms)
	assert.Equal(t, "수분 섭취 권장", form.Notes)
	assert.True(t, form.HasAnyValue())
	assert.False(t, HistoryForm{}.HasAnyValue())
}
