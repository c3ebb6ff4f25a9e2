package intake

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"medinote-gateway/internal/clients"
	"medinote-gateway/internal/notify"
	"medinote-gateway/pkg/api"
)

// MedicationScanFlow drives the prescription OCR intake: select an image,
// preview it, then run the two-step upload/parse sequence and let the user
// pick which of the recognized medications to keep.
type MedicationScanFlow struct {
	ocr            *clients.OCRClient
	notifier       notify.Notifier
	prescriptionID int64

	step     Step
	preview  *Preview
	parsed   []api.PrescriptionParsedItem
	selected map[int]bool
	form     MedForm
}

func NewMedicationScanFlow(ocr *clients.OCRClient, notifier notify.Notifier, prescriptionID int64) *MedicationScanFlow {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	return &MedicationScanFlow{
		ocr:            ocr,
		notifier:       notifier,
		prescriptionID: prescriptionID,
		step:           StepIdle,
		selected:       map[int]bool{},
		form:           DefaultMedForm(time.Now()),
	}
}

func (f *MedicationScanFlow) Step() Step    { return f.step }
func (f *MedicationScanFlow) Form() MedForm { return f.form }

// Open moves from idle to method selection (camera or gallery; both funnel
// into SelectFile).
func (f *MedicationScanFlow) Open() error {
	return move(&f.step, StepSelectMethod)
}

// SelectFile installs the chosen image as the preview. An empty payload is a
// validation error and causes no transition. Any previous preview is released
// before the new one is installed.
func (f *MedicationScanFlow) SelectFile(name string, data []byte) error {
	if len(data) == 0 {
		f.notifier.Error("이미지 파일을 선택해 주세요.")
		return ErrNoFile
	}
	if f.step != StepPreview {
		if err := move(&f.step, StepPreview); err != nil {
			return err
		}
	}
	replacePreview(&f.preview, NewPreview(name, data))
	return nil
}

// Scan runs the upload then parse sequence. Soft failures (empty OCR text,
// zero usable records) return the flow to preview with a notification; the
// parse endpoint is never called when the OCR text is blank. On success every
// surviving record is selected and the first one is merged into the form.
func (f *MedicationScanFlow) Scan(ctx context.Context) error {
	if f.preview == nil || f.preview.Data() == nil {
		f.notifier.Error("OCR에 사용할 이미지를 선택해 주세요.")
		return ErrNoFile
	}
	if err := move(&f.step, StepScanning); err != nil {
		return err
	}

	job, err := f.ocr.UploadPrescription(ctx, f.prescriptionID, f.preview.Name(), bytes.NewReader(f.preview.Data()))
	if err != nil {
		return f.failScan(err)
	}

	if strings.TrimSpace(job.Text) == "" {
		f.notifier.Error("OCR 결과 텍스트가 비어 있습니다. 이미지를 다시 확인해 주세요.")
		f.step = StepPreview
		return ErrEmptyOCRText
	}

	items, err := f.ocr.ParsePrescription(ctx, f.prescriptionID, job.Text)
	if err != nil {
		return f.failScan(err)
	}

	var valid []api.PrescriptionParsedItem
	for _, item := range items {
		if HasParsedValues(item) {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		f.notifier.Error("인식된 처방 정보가 없습니다. 이미지를 다시 확인해 주세요.")
		f.step = StepPreview
		return ErrNoParsedItems
	}

	f.parsed = valid
	f.selected = make(map[int]bool, len(valid))
	for i := range valid {
		f.selected[i] = true
	}
	f.form = MergeParsed(valid[0], f.form)
	f.step = StepComplete

	if len(valid) > 1 {
		f.notifier.Success(fmt.Sprintf("OCR 결과가 적용되었습니다. (%d개 약 인식)", len(valid)))
	} else {
		f.notifier.Success("OCR 결과가 적용되었습니다.")
	}
	return nil
}

func (f *MedicationScanFlow) failScan(err error) error {
	slog.Error("prescription ocr scan failed", "error", err)
	f.notifier.Error("OCR 처리 중 오류가 발생했습니다.")
	f.step = StepPreview
	return err
}

// Parsed returns the surviving records in display order.
func (f *MedicationScanFlow) Parsed() []api.PrescriptionParsedItem {
	out := make([]api.PrescriptionParsedItem, len(f.parsed))
	copy(out, f.parsed)
	return out
}

// Toggle flips a record in or out of the selection and maps it into the form
// so the user can review it. Toggling twice restores the original selection.
func (f *MedicationScanFlow) Toggle(index int) error {
	if index < 0 || index >= len(f.parsed) {
		return fmt.Errorf("parsed record %d out of range", index)
	}
	f.selected[index] = !f.selected[index]
	f.form = MergeParsed(f.parsed[index], f.form)
	return nil
}

// SelectedIndexes returns the selected record positions in ascending order.
func (f *MedicationScanFlow) SelectedIndexes() []int {
	var out []int
	for i, on := range f.selected {
		if on {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// CreateRequests converts every selected record into an independent create
// request, each merged over the current form the way the user last saw it.
func (f *MedicationScanFlow) CreateRequests() []api.PrescriptionCreate {
	var out []api.PrescriptionCreate
	for _, i := range f.SelectedIndexes() {
		merged := MergeParsed(f.parsed[i], f.form)
		out = append(out, merged.PrescriptionCreate())
	}
	return out
}

// Reset discards the selection and returns to method selection. The preview
// is released on this and every other exit path.
func (f *MedicationScanFlow) Reset() error {
	if err := move(&f.step, StepSelectMethod); err != nil {
		return err
	}
	f.clear()
	return nil
}

// Cancel abandons the flow entirely.
func (f *MedicationScanFlow) Cancel() {
	f.clear()
	f.step = StepIdle
}

func (f *MedicationScanFlow) clear() {
	replacePreview(&f.preview, nil)
	f.parsed = nil
	f.selected = map[int]bool{}
	f.form = DefaultMedForm(time.Now())
}

// VisitScanFlow is the visit record variant: same select/preview/scan shape,
// but the parse step yields a single record that is merged into the history
// form, and the flow returns to preview so the user can rescan.
type VisitScanFlow struct {
	ocr      *clients.OCRClient
	notifier notify.Notifier
	visitID  int64

	step    Step
	preview *Preview
}

func NewVisitScanFlow(ocr *clients.OCRClient, notifier notify.Notifier, visitID int64) *VisitScanFlow {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	return &VisitScanFlow{ocr: ocr, notifier: notifier, visitID: visitID, step: StepSelectMethod}
}

func (f *VisitScanFlow) Step() Step { return f.step }

func (f *VisitScanFlow) SelectFile(name string, data []byte) error {
	if len(data) == 0 {
		f.notifier.Error("이미지 파일을 선택해 주세요.")
		return ErrNoFile
	}
	if f.step != StepPreview {
		if err := move(&f.step, StepPreview); err != nil {
			return err
		}
	}
	replacePreview(&f.preview, NewPreview(name, data))
	return nil
}

func (f *VisitScanFlow) Scan(ctx context.Context) (HistoryForm, error) {
	if f.preview == nil || f.preview.Data() == nil {
		f.notifier.Error("파일을 먼저 선택해 주세요.")
		return HistoryForm{}, ErrNoFile
	}
	if err := move(&f.step, StepScanning); err != nil {
		return HistoryForm{}, err
	}

	job, err := f.ocr.UploadVisit(ctx, f.visitID, f.preview.Name(), bytes.NewReader(f.preview.Data()))
	if err != nil {
		return HistoryForm{}, f.failScan(err)
	}

	if strings.TrimSpace(job.Text) == "" {
		f.notifier.Error("OCR 결과 텍스트가 비어 있습니다. 이미지 상태를 다시 확인해 주세요.")
		f.step = StepPreview
		return HistoryForm{}, ErrEmptyOCRText
	}

	parsed, err := f.ocr.ParseVisit(ctx, f.visitID, job.Text)
	if err != nil {
		return HistoryForm{}, f.failScan(err)
	}

	mapped := MapVisitParsed(parsed)
	if !mapped.HasAnyValue() {
		f.notifier.Error("인식된 데이터가 없습니다. 이미지 상태를 확인해 주세요.")
		f.step = StepPreview
		return HistoryForm{}, ErrNoParsedItems
	}

	f.notifier.Success("OCR 결과를 불러왔습니다.")
	f.step = StepPreview
	return mapped, nil
}

func (f *VisitScanFlow) failScan(err error) error {
	slog.Error("visit ocr scan failed", "error", err)
	f.notifier.Error("OCR 처리 중 오류가 발생했습니다. 다시 시도해 주세요.")
	f.step = StepPreview
	return err
}

func (f *VisitScanFlow) Reset() error {
	if err := move(&f.step, StepSelectMethod); err != nil {
		return err
	}
	replacePreview(&f.preview, nil)
	return nil
}

func (f *VisitScanFlow) Cancel() {
	replacePreview(&f.preview, nil)
	f.step = StepIdle
}
