package api

// Request bodies for the gateway's own surface.

// ChatSendRequest targets a session by its local id; when empty the current
// session receives the message.
type ChatSendRequest struct {
	LocalID string `json:"local_id,omitempty"`
	Text    string `json:"text"`
}

const (
	MedicationTypePrescription = "prescription"
	MedicationTypeSupplement   = "supplement"
)

// MedicationCreateRequest creates either a prescription medication (attached
// to a visit) or a free-standing supplement, depending on Type.
type MedicationCreateRequest struct {
	Type           string   `json:"type"`
	VisitID        int64    `json:"visit_id,omitempty"`
	Name           string   `json:"name"`
	DosageForm     string   `json:"dosage_form"`
	Dose           string   `json:"dose"`
	Unit           string   `json:"unit"`
	Schedule       []string `json:"schedule"`
	CustomSchedule string   `json:"custom_schedule,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}
