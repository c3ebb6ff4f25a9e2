package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"medinote-gateway/pkg/api"
)

// OCRClient talks to the OCR service. The per-resource endpoints
// (/prescriptions/{id}/ocr, /visits/{id}/ocr) are the authoritative contract;
// Analyze covers the generic /ocr/analyze variant the service also exposes.
type OCRClient struct {
	client *resty.Client
}

func NewOCRClient(baseURL string) *OCRClient {
	return &OCRClient{client: newClient("ocr", baseURL)}
}

func (c *OCRClient) upload(ctx context.Context, path, id, filename string, file io.Reader) (api.OCRJobResponse, error) {
	var out api.OCRJobResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetFileReader("file", filename, file).
		SetResult(&out).
		Post(path)
	if err != nil {
		return api.OCRJobResponse{}, err
	}
	if !res.IsSuccess() {
		return api.OCRJobResponse{}, upstreamError(res, "ocr upload")
	}
	return out, nil
}

// UploadPrescription runs OCR on a prescription image and returns the job
// record including the extracted text.
func (c *OCRClient) UploadPrescription(ctx context.Context, prescriptionID int64, filename string, file io.Reader) (api.OCRJobResponse, error) {
	return c.upload(ctx, "/prescriptions/{id}/ocr", formatID(prescriptionID), filename, file)
}

func (c *OCRClient) UploadVisit(ctx context.Context, visitID int64, filename string, file io.Reader) (api.OCRJobResponse, error) {
	return c.upload(ctx, "/visits/{id}/ocr", formatID(visitID), filename, file)
}

// ParsePrescription structures raw OCR text into medication records. The
// service replies with either a single object or an array; both are accepted.
func (c *OCRClient) ParsePrescription(ctx context.Context, prescriptionID int64, text string) ([]api.PrescriptionParsedItem, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", formatID(prescriptionID)).
		SetBody(api.OCRParseRequest{Text: text}).
		Post("/prescriptions/{id}/ocr/parse")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, upstreamError(res, "prescription parse")
	}

	body := bytes.TrimSpace(res.Body())
	if len(body) > 0 && body[0] == '[' {
		var items []api.PrescriptionParsedItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decoding parse response: %w", err)
		}
		return items, nil
	}

	var item api.PrescriptionParsedItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decoding parse response: %w", err)
	}
	return []api.PrescriptionParsedItem{item}, nil
}

func (c *OCRClient) ParseVisit(ctx context.Context, visitID int64, text string) (api.VisitParsed, error) {
	var out api.VisitParsed
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", formatID(visitID)).
		SetBody(api.OCRParseRequest{Text: text}).
		SetResult(&out).
		Post("/visits/{id}/ocr/parse")
	if err != nil {
		return api.VisitParsed{}, err
	}
	if !res.IsSuccess() {
		return api.VisitParsed{}, upstreamError(res, "visit parse")
	}
	return out, nil
}

// Analyze is the generic OCR entry point, kept for callers that are not tied
// to a visit or prescription.
func (c *OCRClient) Analyze(ctx context.Context, sourceType, filename string, file io.Reader) (api.OCRJobResponse, error) {
	var out api.OCRJobResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, file).
		SetFormData(map[string]string{"source_type": sourceType}).
		SetResult(&out).
		Post("/ocr/analyze")
	if err != nil {
		return api.OCRJobResponse{}, err
	}
	if !res.IsSuccess() {
		return api.OCRJobResponse{}, upstreamError(res, "ocr analyze")
	}
	return out, nil
}
