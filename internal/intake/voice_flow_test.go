package intake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medinote-gateway/internal/clients"
	"medinote-gateway/internal/notify"
	"medinote-gateway/internal/poller"
	"medinote-gateway/pkg/api"
)

// fakeCore serves the STT endpoints. statuses is consumed one entry per poll;
// the last entry repeats once exhausted.
type fakeCore struct {
	statuses []api.STTStatusResponse

	submitCalls int
	statusCalls int
}

func (f *fakeCore) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stt/analyze", func(w http.ResponseWriter, r *http.Request) {
		f.submitCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.STTAnalyzeResponse{STTID: "stt-1", Status: api.STTStatusPending})
	})
	mux.HandleFunc("GET /stt/{stt_id}/status", func(w http.ResponseWriter, r *http.Request) {
		i := f.statusCalls
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		f.statusCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.statuses[i])
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestVoiceFlow(t *testing.T, fake *fakeCore, rec notify.Notifier) *VoiceFlow {
	server := fake.server(t)
	flow := NewVoiceFlow(clients.NewCoreClient(server.URL), rec)
	flow.PollInterval = 5 * time.Millisecond
	flow.MaxAttempts = 20
	return flow
}

func TestProcessFilePollsUntilDone(t *testing.T) {
	fake := &fakeCore{statuses: []api.STTStatusResponse{
		{STTID: "stt-1", Status: api.STTStatusPending},
		{STTID: "stt-1", Status: api.STTStatusPending},
		{STTID: "stt-1", Status: api.STTStatusDone, Diagnosis: "감기", Symptoms: "기침, 발열", Notes: "약 복용 후 휴식"},
	}}

	rec := &notify.Recorder{}
	flow := newTestVoiceFlow(t, fake, rec)

	var completed *HistoryForm
	flow.OnComplete = func(form HistoryForm) { completed = &form }

	form, err := flow.ProcessFile(context.Background(), "consult.m4a", []byte("audio-bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "감기", form.Title)
	assert.Equal(t, "기침, 발열", form.Symptoms)
	assert.Equal(t, "약 복용 후 휴식", form.Notes)

	assert.Equal(t, 1, fake.submitCalls)
	assert.Equal(t, 3, fake.statusCalls)
	assert.Equal(t, VoiceSelectMethod, flow.Step())
	if assert.NotNil(t, completed) {
		assert.Equal(t, form, *completed)
	}
	assert.Equal(t, []string{"음성 변환 완료!"}, rec.Successes)
}

func TestProcessFileJobError(t *testing.T) {
	fake := &fakeCore{statuses: []api.STTStatusResponse{
		{STTID: "stt-1", Status: api.STTStatusError},
	}}

	rec := &notify.Recorder{}
	flow := newTestVoiceFlow(t, fake, rec)

	cancelled := false
	flow.OnCancel = func() { cancelled = true }

	_, err := flow.ProcessFile(context.Background(), "consult.m4a", []byte("audio-bytes"))
	assert.ErrorIs(t, err, poller.ErrJobFailed)
	assert.True(t, cancelled)
	assert.Contains(t, rec.Errors, "STT 처리 실패")
	assert.Equal(t, VoiceSelectMethod, flow.Step())
}

func TestProcessFileEmptyTranscript(t *testing.T) {
	fake := &fakeCore{statuses: []api.STTStatusResponse{
		{STTID: "stt-1", Status: api.STTStatusDone},
	}}

	rec := &notify.Recorder{}
	flow := newTestVoiceFlow(t, fake, rec)

	_, err := flow.ProcessFile(context.Background(), "consult.m4a", []byte("audio-bytes"))
	assert.ErrorIs(t, err, ErrNoParsedItems)
	assert.Contains(t, rec.Errors, "음성에서 인식된 내용이 없습니다.")
}

func TestProcessFileRejectsEmptyPayload(t *testing.T) {
	flow := NewVoiceFlow(nil, &notify.Recorder{})
	_, err := flow.ProcessFile(context.Background(), "consult.m4a", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestConsentGate(t *testing.T) {
	flow := NewVoiceFlow(nil, &notify.Recorder{})

	// Recording cannot start from select-method at all.
	err := flow.StartRecording(io.NopCloser(strings.NewReader("")))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.NoError(t, flow.ChooseRecording())
	assert.Equal(t, VoiceConsent, flow.Step())

	// Still blocked until the consent box is checked.
	err = flow.StartRecording(io.NopCloser(strings.NewReader("")))
	assert.ErrorIs(t, err, ErrConsentRequired)

	flow.SetConsent(true)
	assert.NoError(t, flow.StartRecording(io.NopCloser(strings.NewReader("audio"))))
	assert.Equal(t, VoiceRecording, flow.Step())
}

func TestStopAndProcessSubmitsRecording(t *testing.T) {
	fake := &fakeCore{statuses: []api.STTStatusResponse{
		{STTID: "stt-1", Status: api.STTStatusDone, Diagnosis: "장염"},
	}}

	flow := newTestVoiceFlow(t, fake, &notify.Recorder{})
	assert.NoError(t, flow.ChooseRecording())
	flow.SetConsent(true)
	assert.NoError(t, flow.StartRecording(io.NopCloser(strings.NewReader("audio-bytes"))))

	form, err := flow.StopAndProcess(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "장염", form.Title)
	assert.Equal(t, 1, fake.submitCalls)
	assert.False(t, flow.Recorder().Recording())
}
