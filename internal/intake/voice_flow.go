package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"medinote-gateway/internal/clients"
	"medinote-gateway/internal/notify"
	"medinote-gateway/internal/poller"
	"medinote-gateway/pkg/api"
)

var ErrConsentRequired = errors.New("recording consent not given")

// VoiceStep is the voice flow state.
type VoiceStep int

const (
	VoiceSelectMethod VoiceStep = iota
	VoiceConsent
	VoiceRecording
	VoiceProcessing
)

func (s VoiceStep) String() string {
	switch s {
	case VoiceSelectMethod:
		return "selectMethod"
	case VoiceConsent:
		return "consent"
	case VoiceRecording:
		return "recording"
	case VoiceProcessing:
		return "processing"
	default:
		return fmt.Sprintf("voiceStep(%d)", int(s))
	}
}

// VoiceFlow turns a consultation recording into history form fields. Two
// entry paths exist: live capture, which is gated behind an explicit consent
// checkbox, and direct file selection, which bypasses the gate. Either way
// the audio is submitted for transcription and the job is polled until
// terminal.
type VoiceFlow struct {
	core     *clients.CoreClient
	notifier notify.Notifier

	PollInterval time.Duration
	MaxAttempts  int

	// OnComplete receives the mapped fields when transcription succeeds.
	// OnCancel is invoked when the job itself fails and the flow aborts.
	OnComplete func(HistoryForm)
	OnCancel   func()

	step      VoiceStep
	consented bool
	recorder  Recorder
}

func NewVoiceFlow(core *clients.CoreClient, notifier notify.Notifier) *VoiceFlow {
	if notifier == nil {
		notifier = notify.SlogNotifier{}
	}
	return &VoiceFlow{core: core, notifier: notifier, step: VoiceSelectMethod}
}

func (f *VoiceFlow) Step() VoiceStep     { return f.step }
func (f *VoiceFlow) Recorder() *Recorder { return &f.recorder }

// ChooseRecording moves to the consent gate for the live capture path.
func (f *VoiceFlow) ChooseRecording() error {
	if f.step != VoiceSelectMethod {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.step, VoiceConsent)
	}
	f.step = VoiceConsent
	return nil
}

func (f *VoiceFlow) SetConsent(ok bool) {
	f.consented = ok
}

// StartRecording begins live capture. It is only enabled once consent has
// been given.
func (f *VoiceFlow) StartRecording(src io.ReadCloser) error {
	if f.step != VoiceConsent {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.step, VoiceRecording)
	}
	if !f.consented {
		return ErrConsentRequired
	}
	if err := f.recorder.Start(src); err != nil {
		return err
	}
	f.step = VoiceRecording
	return nil
}

// StopAndProcess ends the live capture and submits the blob. Stream resources
// are released by the recorder on every stop path.
func (f *VoiceFlow) StopAndProcess(ctx context.Context) (HistoryForm, error) {
	if f.step != VoiceRecording {
		return HistoryForm{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.step, VoiceProcessing)
	}
	blob, err := f.recorder.Stop()
	if err != nil {
		f.step = VoiceSelectMethod
		f.notifier.Error("녹음에 실패했습니다.")
		return HistoryForm{}, err
	}
	return f.process(ctx, "recording.webm", blob)
}

// ProcessFile is the direct file selection path; no consent gate applies.
func (f *VoiceFlow) ProcessFile(ctx context.Context, name string, data []byte) (HistoryForm, error) {
	if len(data) == 0 {
		f.notifier.Error("녹음 파일이 선택되지 않았습니다.")
		return HistoryForm{}, ErrNoFile
	}
	return f.process(ctx, name, data)
}

func (f *VoiceFlow) process(ctx context.Context, name string, data []byte) (HistoryForm, error) {
	f.step = VoiceProcessing
	f.notifier.Info("음성 파일 변환 중...")

	sttID, err := f.core.SubmitAudio(ctx, name, bytes.NewReader(data))
	if err != nil {
		slog.Error("stt submit failed", "error", err)
		f.notifier.Error("파일 업로드 실패")
		f.cancel()
		return HistoryForm{}, err
	}

	p := poller.Poller[api.STTStatusResponse]{
		Kind:        "stt",
		Interval:    f.PollInterval,
		MaxAttempts: f.MaxAttempts,
		Check: func(ctx context.Context) (api.STTStatusResponse, poller.Verdict, error) {
			status, err := f.core.STTStatus(ctx, sttID)
			if err != nil {
				return api.STTStatusResponse{}, poller.Pending, err
			}
			switch status.Status {
			case api.STTStatusDone:
				return status, poller.Done, nil
			case api.STTStatusError:
				return api.STTStatusResponse{}, poller.Failed, nil
			default:
				return api.STTStatusResponse{}, poller.Pending, nil
			}
		},
	}

	status, err := p.Wait(ctx)
	if err != nil {
		if errors.Is(err, poller.ErrJobFailed) {
			f.notifier.Error("STT 처리 실패")
		} else {
			slog.Error("stt status poll failed", "stt_id", sttID, "error", err)
			f.notifier.Error("상태 확인 중 오류 발생")
		}
		f.cancel()
		return HistoryForm{}, err
	}

	mapped := HistoryForm{
		Title:    status.Diagnosis,
		Symptoms: status.Symptoms,
		Notes:    status.Notes,
	}
	if strings.TrimSpace(mapped.Title) == "" &&
		strings.TrimSpace(mapped.Symptoms) == "" &&
		strings.TrimSpace(mapped.Notes) == "" {
		f.notifier.Error("음성에서 인식된 내용이 없습니다.")
		f.step = VoiceSelectMethod
		return HistoryForm{}, ErrNoParsedItems
	}

	f.notifier.Success("음성 변환 완료!")
	f.step = VoiceSelectMethod
	if f.OnComplete != nil {
		f.OnComplete(mapped)
	}
	return mapped, nil
}

func (f *VoiceFlow) cancel() {
	f.step = VoiceSelectMethod
	if f.OnCancel != nil {
		f.OnCancel()
	}
}
