package clients

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"medinote-gateway/pkg/api"
)

type ChatbotClient struct {
	client *resty.Client
}

func NewChatbotClient(baseURL string) *ChatbotClient {
	return &ChatbotClient{client: newClient("chatbot", baseURL)}
}

// Query submits one conversational turn. A sessionID of 0 asks the service to
// open a new session; the response always carries the authoritative session id.
func (c *ChatbotClient) Query(ctx context.Context, sessionID int64, query string) (api.ChatQueryResponse, error) {
	var out api.ChatQueryResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(api.ChatQueryRequest{SessionID: sessionID, Query: query}).
		SetResult(&out).
		Post("/chatbot/query")
	if err != nil {
		return api.ChatQueryResponse{}, err
	}
	if !res.IsSuccess() {
		return api.ChatQueryResponse{}, upstreamError(res, "chatbot query")
	}
	return out, nil
}

func (c *ChatbotClient) ListSessions(ctx context.Context) ([]api.SessionItem, error) {
	var out api.SessionsResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chatbot/sessions")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, upstreamError(res, "list chat sessions")
	}
	return out.Sessions, nil
}

func (c *ChatbotClient) GetSession(ctx context.Context, sessionID int64) (api.SessionDetailResponse, error) {
	var out api.SessionDetailResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("session_id", formatID(sessionID)).
		SetResult(&out).
		Get("/chatbot/sessions/{session_id}")
	if err != nil {
		return api.SessionDetailResponse{}, err
	}
	if !res.IsSuccess() {
		return api.SessionDetailResponse{}, upstreamError(res, "fetch chat session")
	}
	return out, nil
}

// DeleteSession removes a server-side session. The service replies with a
// plain string acknowledgement, which is only logged.
func (c *ChatbotClient) DeleteSession(ctx context.Context, sessionID int64) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("session_id", formatID(sessionID)).
		Delete("/chatbot/sessions/{session_id}")
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return upstreamError(res, "delete chat session")
	}
	slog.Debug("deleted chat session", "session_id", sessionID, "ack", res.String())
	return nil
}

func (c *ChatbotClient) DeleteAllSessions(ctx context.Context) error {
	res, err := c.client.R().
		SetContext(ctx).
		Delete("/chatbot/sessions")
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return upstreamError(res, "delete all chat sessions")
	}
	return nil
}

// Analysis requests a health analysis report. The service does not record the
// exchange in any session.
func (c *ChatbotClient) Analysis(ctx context.Context) (string, error) {
	var out api.AnalysisResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Post("/chatbot/analysis")
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", upstreamError(res, "health analysis")
	}
	return out.Analysis, nil
}
