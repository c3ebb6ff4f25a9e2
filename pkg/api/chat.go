package api

// Wire types for the chatbot service. The session_id convention follows the
// upstream contract: 0 means "create a new session", any other value continues
// an existing one.

type ChatQueryRequest struct {
	SessionID int64  `json:"session_id"`
	Query     string `json:"query"`
}

type Source struct {
	ID         string  `json:"id"`
	Collection string  `json:"collection"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

type ChatQueryResponse struct {
	SessionID int64    `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources,omitempty"`
}

type SessionItem struct {
	SessionID int64  `json:"session_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type SessionsResponse struct {
	Sessions []SessionItem `json:"sessions"`
}

type SessionMessage struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	Sources   []Source `json:"sources,omitempty"`
}

type SessionDetailResponse struct {
	SessionID int64            `json:"session_id"`
	Messages  []SessionMessage `json:"messages"`
}

type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}
