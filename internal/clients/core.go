package clients

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"

	"medinote-gateway/pkg/api"
)

// CoreClient talks to the core CRUD API, which also fronts the speech-to-text
// pipeline.
type CoreClient struct {
	client *resty.Client
}

func NewCoreClient(baseURL string) *CoreClient {
	return &CoreClient{client: newClient("core", baseURL)}
}

// SubmitAudio uploads an audio blob for transcription and returns the job id
// to poll.
func (c *CoreClient) SubmitAudio(ctx context.Context, filename string, file io.Reader) (string, error) {
	var out api.STTAnalyzeResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, file).
		SetResult(&out).
		Post("/stt/analyze")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", upstreamError(res, "stt submit")
	}
	return out.STTID, nil
}

func (c *CoreClient) STTStatus(ctx context.Context, sttID string) (api.STTStatusResponse, error) {
	var out api.STTStatusResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("stt_id", sttID).
		SetResult(&out).
		Get("/stt/{stt_id}/status")
	if err != nil {
		return api.STTStatusResponse{}, err
	}
	if !res.IsSuccess() {
		return api.STTStatusResponse{}, upstreamError(res, "stt status")
	}
	return out, nil
}

func (c *CoreClient) CreateDrug(ctx context.Context, req api.DrugCreate) (api.DrugItem, error) {
	var out api.DrugItem
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/drug/")
	if err != nil {
		return api.DrugItem{}, err
	}
	if !res.IsSuccess() {
		return api.DrugItem{}, upstreamError(res, "create drug")
	}
	return out, nil
}

func (c *CoreClient) ListDrugs(ctx context.Context) ([]api.DrugItem, error) {
	var out []api.DrugItem
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/drug/")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, upstreamError(res, "list drugs")
	}
	return out, nil
}

// CreatePrescription attaches a prescription medication to a visit.
func (c *CoreClient) CreatePrescription(ctx context.Context, visitID int64, req api.PrescriptionCreate) (api.PrescriptionItem, error) {
	var out api.PrescriptionItem
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("visit_id", formatID(visitID)).
		SetBody(req).
		SetResult(&out).
		Post("/prescription/visit/{visit_id}")
	if err != nil {
		return api.PrescriptionItem{}, err
	}
	if !res.IsSuccess() {
		return api.PrescriptionItem{}, upstreamError(res, "create prescription")
	}
	return out, nil
}

func (c *CoreClient) ListPrescriptions(ctx context.Context) ([]api.PrescriptionItem, error) {
	var out []api.PrescriptionItem
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/prescription/")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, upstreamError(res, "list prescriptions")
	}
	return out, nil
}

func (c *CoreClient) CreateVisit(ctx context.Context, req api.VisitCreate) (api.VisitItem, error) {
	var out api.VisitItem
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/visits/")
	if err != nil {
		return api.VisitItem{}, err
	}
	if !res.IsSuccess() {
		return api.VisitItem{}, upstreamError(res, "create visit")
	}
	return out, nil
}

func (c *CoreClient) ListVisits(ctx context.Context) ([]api.VisitItem, error) {
	var out []api.VisitItem
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/visits/")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, upstreamError(res, "list visits")
	}
	return out, nil
}
