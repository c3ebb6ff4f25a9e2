package api

// Wire types for the OCR and STT services.

type OCRJobResponse struct {
	OCRID       int64  `json:"ocr_id"`
	FileID      int64  `json:"file_id"`
	UserID      int64  `json:"user_id"`
	SourceType  string `json:"source_type"`
	Status      string `json:"status"`
	Text        string `json:"text"`
	VisitID     *int64 `json:"visit_id"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at"`
}

type OCRParseRequest struct {
	Text string `json:"text"`
}

// PrescriptionParsedItem is one candidate medication extracted by the parser.
// Every field is optional; a record with no populated field is discarded
// before it is ever shown to the user.
type PrescriptionParsedItem struct {
	MedName        string   `json:"med_name,omitempty"`
	DosageForm     string   `json:"dosage_form,omitempty"`
	Dose           string   `json:"dose,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	Schedule       []string `json:"schedule,omitempty"`
	CustomSchedule string   `json:"custom_schedule,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
}

// VisitParsed mirrors the parser's visit form schema.
type VisitParsed struct {
	Hospital      string `json:"hospital,omitempty"`
	DoctorName    string `json:"doctor_name,omitempty"`
	Symptom       string `json:"symptom,omitempty"`
	Opinion       string `json:"opinion,omitempty"`
	DiagnosisCode string `json:"diagnosis_code,omitempty"`
	DiagnosisName string `json:"diagnosis_name,omitempty"`
	Date          string `json:"date,omitempty"`
}

const (
	STTStatusPending = "pending"
	STTStatusDone    = "done"
	STTStatusError   = "error"
)

type STTAnalyzeResponse struct {
	UserID int64  `json:"user_id"`
	STTID  string `json:"stt_id"`
	Status string `json:"status"`
}

type STTStatusResponse struct {
	STTID     string `json:"stt_id"`
	Status    string `json:"status"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Symptoms  string `json:"symptoms,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Date      string `json:"date,omitempty"`
}
