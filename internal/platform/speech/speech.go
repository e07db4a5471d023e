package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/upskillworks/roadmap-backend/internal/pkg/ctxutil"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

// Transcriber converts interview recordings into plain text for the
// insight-extraction pipeline.
type Transcriber interface {
	TranscribeGCS(ctx context.Context, gcsURI string, languageCode string) (string, error)
	Close() error
}

type transcriber struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewTranscriber(log *logger.Logger) (Transcriber, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	ctx := context.Background()

	var opts []option.ClientOption
	if saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"); saPath != "" {
		opts = append(opts, option.WithCredentialsFile(saPath))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &transcriber{
		log:        log.With("client", "SpeechTranscriber"),
		client:     client,
		maxRetries: 3,
	}, nil
}

func (t *transcriber) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

func (t *transcriber) TranscribeGCS(ctx context.Context, gcsURI string, languageCode string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               languageCode,
			EnableAutomaticPunctuation: true,
			Encoding:                   inferEncoding(gcsURI),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: gcsURI},
		},
	}

	var resp *speechpb.LongRunningRecognizeResponse
	backoff := 2 * time.Second
	for attempt := 0; ; attempt++ {
		op, err := t.client.LongRunningRecognize(ctx, req)
		if err == nil {
			resp, err = op.Wait(ctx)
		}
		if err == nil {
			break
		}
		if attempt >= t.maxRetries || !isRetryable(err) {
			return "", fmt.Errorf("speech recognize: %w", err)
		}
		t.log.Warn("speech recognize retrying", "attempt", attempt+1, "error", err.Error())
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	var sb strings.Builder
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		text := strings.TrimSpace(alts[0].GetTranscript())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func isRetryable(err error) bool {
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func inferEncoding(gcsURI string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(gcsURI)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
