package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"medinote-gateway/internal/chat"
	"medinote-gateway/internal/clients"
	"medinote-gateway/internal/intake"
	"medinote-gateway/internal/notify"
	"medinote-gateway/internal/poller"
	"medinote-gateway/internal/records"
	"medinote-gateway/pkg/api"
)

const maxUploadBytes = 32 << 20

const analysisCacheKey = "analysis"

// GatewayService exposes the intake flows, the chat controller, and the
// record stores over HTTP. Scan and voice requests each run a fresh flow to
// completion; chat and records are shared state.
type GatewayService struct {
	ocr     *clients.OCRClient
	core    *clients.CoreClient
	chatbot *clients.ChatbotClient

	chat     *chat.Controller
	meds     *records.MedicationStore
	visits   *records.VisitStore
	notifier notify.Notifier

	pollInterval time.Duration
	maxAttempts  int

	analysisCache *cache.Cache
	chatLoad      sync.Once
}

func NewGatewayService(core *clients.CoreClient, chatbot *clients.ChatbotClient, ocr *clients.OCRClient, userName string, pollInterval time.Duration, maxAttempts int, analysisTTL time.Duration) *GatewayService {
	notifier := notify.SlogNotifier{}
	return &GatewayService{
		ocr:           ocr,
		core:          core,
		chatbot:       chatbot,
		chat:          chat.NewController(chatbot, notifier, userName),
		meds:          records.NewMedicationStore(),
		visits:        records.NewVisitStore(),
		notifier:      notifier,
		pollInterval:  pollInterval,
		maxAttempts:   maxAttempts,
		analysisCache: cache.New(analysisTTL, 2*analysisTTL),
	}
}

func (s *GatewayService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(s.Health))

	r.Route("/intake", func(r chi.Router) {
		r.Post("/medications/scan", RestHandler(s.ScanMedications))
		r.Post("/visits/scan", RestHandler(s.ScanVisit))
		r.Post("/voice", RestHandler(s.ProcessVoice))
	})

	r.Route("/chat", func(r chi.Router) {
		r.Get("/sessions", RestHandler(s.GetChatSessions))
		r.Post("/sessions", RestHandler(s.StartChatSession))
		r.Post("/sessions/{local_id}/select", RestHandler(s.SelectChatSession))
		r.Delete("/sessions/{local_id}", RestHandler(s.DeleteChatSession))
		r.Delete("/sessions", RestHandler(s.DeleteAllChatSessions))
		r.Post("/query", RestHandler(s.SendChatMessage))
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/medications", RestHandler(s.GetMedications))
		r.Post("/medications", RestHandler(s.CreateMedication))
		r.Get("/visits", RestHandler(s.GetVisits))
		r.Post("/visits", RestHandler(s.CreateVisit))
	})

	r.Get("/analysis", RestHandler(s.GetAnalysis))
}

func (s *GatewayService) Health(r *http.Request) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

// readUpload pulls the uploaded file out of the multipart form. A missing part
// is reported the same way the flows report an empty selection.
func readUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, CodedErrorf(http.StatusBadRequest, "missing 'file' form part")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, CodedErrorf(http.StatusBadRequest, "unable to read uploaded file: %v", err)
	}
	return header.Filename, data, nil
}

func formInt64(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.FormValue(key), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// scanError translates flow errors into response codes: client mistakes are
// 400, unusable scan results are 422, downstream failures are 502.
func scanError(err error) error {
	switch {
	case errors.Is(err, intake.ErrNoFile):
		return CodedError(http.StatusBadRequest, err)
	case errors.Is(err, intake.ErrEmptyOCRText), errors.Is(err, intake.ErrNoParsedItems):
		return CodedError(http.StatusUnprocessableEntity, err)
	case errors.Is(err, intake.ErrInvalidTransition):
		return CodedError(http.StatusConflict, err)
	case errors.Is(err, poller.ErrJobFailed), errors.Is(err, poller.ErrAttemptsExhausted):
		return CodedError(http.StatusBadGateway, err)
	default:
		return CodedError(http.StatusBadGateway, err)
	}
}

type medicationScanResponse struct {
	Items    []api.PrescriptionParsedItem `json:"items"`
	Selected []int                        `json:"selected"`
	Form     intake.MedForm               `json:"form"`
	Requests []api.PrescriptionCreate     `json:"requests"`
}

func (s *GatewayService) ScanMedications(r *http.Request) (any, error) {
	name, data, err := readUpload(r)
	if err != nil {
		return nil, err
	}
	prescriptionID := formInt64(r, "prescription_id")

	flow := intake.NewMedicationScanFlow(s.ocr, s.notifier, prescriptionID)
	if err := flow.Open(); err != nil {
		return nil, scanError(err)
	}
	if err := flow.SelectFile(name, data); err != nil {
		return nil, scanError(err)
	}
	if err := flow.Scan(r.Context()); err != nil {
		return nil, scanError(err)
	}

	return medicationScanResponse{
		Items:    flow.Parsed(),
		Selected: flow.SelectedIndexes(),
		Form:     flow.Form(),
		Requests: flow.CreateRequests(),
	}, nil
}

func (s *GatewayService) ScanVisit(r *http.Request) (any, error) {
	name, data, err := readUpload(r)
	if err != nil {
		return nil, err
	}
	visitID := formInt64(r, "visit_id")

	flow := intake.NewVisitScanFlow(s.ocr, s.notifier, visitID)
	if err := flow.SelectFile(name, data); err != nil {
		return nil, scanError(err)
	}
	form, err := flow.Scan(r.Context())
	if err != nil {
		return nil, scanError(err)
	}
	return form, nil
}

func (s *GatewayService) ProcessVoice(r *http.Request) (any, error) {
	name, data, err := readUpload(r)
	if err != nil {
		return nil, err
	}

	flow := intake.NewVoiceFlow(s.core, s.notifier)
	flow.PollInterval = s.pollInterval
	flow.MaxAttempts = s.maxAttempts

	form, err := flow.ProcessFile(r.Context(), name, data)
	if err != nil {
		return nil, scanError(err)
	}
	return form, nil
}

// ensureChatLoaded hydrates the session list from the chatbot service once per
// process. A failed load already synthesizes a local placeholder, so the
// error is not surfaced here.
func (s *GatewayService) ensureChatLoaded(r *http.Request) {
	s.chatLoad.Do(func() {
		_ = s.chat.Load(r.Context())
	})
}

func (s *GatewayService) GetChatSessions(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	return s.chat.Sessions(), nil
}

func (s *GatewayService) StartChatSession(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	return s.chat.NewSession(), nil
}

func (s *GatewayService) SelectChatSession(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	localID, err := URLParamUUID(r, "local_id")
	if err != nil {
		return nil, err
	}
	if err := s.chat.Select(localID); err != nil {
		return nil, chatError(err)
	}
	session, _ := s.chat.Current()
	return session, nil
}

func (s *GatewayService) DeleteChatSession(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	localID, err := URLParamUUID(r, "local_id")
	if err != nil {
		return nil, err
	}
	if err := s.chat.Delete(r.Context(), localID); err != nil {
		return nil, chatError(err)
	}
	return nil, nil
}

func (s *GatewayService) DeleteAllChatSessions(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	if err := s.chat.DeleteAll(r.Context()); err != nil {
		return nil, chatError(err)
	}
	return nil, nil
}

func (s *GatewayService) SendChatMessage(r *http.Request) (any, error) {
	s.ensureChatLoaded(r)
	req, err := ParseRequest[api.ChatSendRequest](r)
	if err != nil {
		return nil, err
	}

	if req.LocalID != "" {
		localID, err := uuid.Parse(req.LocalID)
		if err != nil {
			return nil, CodedErrorf(http.StatusBadRequest, "invalid local_id '%v': %w", req.LocalID, err)
		}
		if err := s.chat.Select(localID); err != nil {
			return nil, chatError(err)
		}
	}

	reply, err := s.chat.Send(r.Context(), req.Text, nil)
	if err != nil {
		return nil, chatError(err)
	}
	return reply, nil
}

func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		return CodedError(http.StatusNotFound, err)
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrNoCurrentSession):
		return CodedError(http.StatusBadRequest, err)
	default:
		return CodedError(http.StatusBadGateway, err)
	}
}

// medicationListQuery filters the merged medication listing by record type.
type medicationListQuery struct {
	Type string `schema:"type"`
}

// GetMedications refreshes the store from the core API and returns the merged
// list, prescriptions first. An optional ?type= query narrows the result to
// prescriptions or supplements.
func (s *GatewayService) GetMedications(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[medicationListQuery](r)
	if err != nil {
		return nil, err
	}
	switch query.Type {
	case "", api.MedicationTypePrescription, api.MedicationTypeSupplement:
	default:
		return nil, CodedErrorf(http.StatusBadRequest, "unknown medication type '%v'", query.Type)
	}

	prescriptions, err := s.core.ListPrescriptions(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusBadGateway, err)
	}
	drugs, err := s.core.ListDrugs(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusBadGateway, err)
	}

	merged := make([]records.Medication, 0, len(prescriptions)+len(drugs))
	for _, item := range prescriptions {
		merged = append(merged, records.MedicationFromPrescription(item))
	}
	for _, item := range drugs {
		merged = append(merged, records.MedicationFromDrug(item))
	}
	s.meds.Replace(merged)

	list := s.meds.List()
	if query.Type == "" {
		return list, nil
	}
	filtered := make([]records.Medication, 0, len(list))
	for _, med := range list {
		if med.Type == query.Type {
			filtered = append(filtered, med)
		}
	}
	return filtered, nil
}

func (s *GatewayService) CreateMedication(r *http.Request) (any, error) {
	req, err := ParseRequest[api.MedicationCreateRequest](r)
	if err != nil {
		return nil, err
	}

	form := intake.MedForm{
		Name:           req.Name,
		DosageForm:     req.DosageForm,
		Dose:           req.Dose,
		Unit:           req.Unit,
		Schedule:       req.Schedule,
		CustomSchedule: req.CustomSchedule,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}

	switch req.Type {
	case api.MedicationTypeSupplement:
		item, err := s.core.CreateDrug(r.Context(), form.DrugCreate())
		if err != nil {
			return nil, CodedError(http.StatusBadGateway, err)
		}
		med := records.MedicationFromDrug(item)
		s.meds.Add(med)
		return med, nil
	case api.MedicationTypePrescription:
		if req.VisitID == 0 {
			return nil, CodedErrorf(http.StatusBadRequest, "visit_id is required for prescription medications")
		}
		item, err := s.core.CreatePrescription(r.Context(), req.VisitID, form.PrescriptionCreate())
		if err != nil {
			return nil, CodedError(http.StatusBadGateway, err)
		}
		med := records.MedicationFromPrescription(item)
		s.meds.Add(med)
		return med, nil
	default:
		return nil, CodedErrorf(http.StatusBadRequest, "unknown medication type '%v'", req.Type)
	}
}

func (s *GatewayService) GetVisits(r *http.Request) (any, error) {
	items, err := s.core.ListVisits(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusBadGateway, err)
	}

	visits := make([]records.VisitRecord, 0, len(items))
	for _, item := range items {
		visits = append(visits, records.VisitRecordFromItem(item))
	}
	s.visits.Replace(visits)
	return s.visits.List(), nil
}

func (s *GatewayService) CreateVisit(r *http.Request) (any, error) {
	req, err := ParseRequest[api.VisitCreate](r)
	if err != nil {
		return nil, err
	}

	item, err := s.core.CreateVisit(r.Context(), req)
	if err != nil {
		return nil, CodedError(http.StatusBadGateway, err)
	}
	visit := records.VisitRecordFromItem(item)
	s.visits.Add(visit)
	return visit, nil
}

// GetAnalysis returns the chatbot's health analysis report. The report is
// expensive to generate so responses are cached for the configured TTL.
func (s *GatewayService) GetAnalysis(r *http.Request) (any, error) {
	if cached, ok := s.analysisCache.Get(analysisCacheKey); ok {
		return api.AnalysisResponse{Analysis: cached.(string)}, nil
	}

	analysis, err := s.chatbot.Analysis(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusBadGateway, err)
	}
	s.analysisCache.Set(analysisCacheKey, analysis, cache.DefaultExpiration)
	return api.AnalysisResponse{Analysis: analysis}, nil
}
