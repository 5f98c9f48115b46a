package services

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// DefaultVoice is the only narration voice currently offered.
const DefaultVoice = "en-US-Chirp3-HD-Puck"

// SpeechSynthesizer turns text into MP3 bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// GoogleTTS synthesizes speech with Google Cloud Text-to-Speech.
type GoogleTTS struct {
	CredentialsFile string
}

func (t *GoogleTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if voice != DefaultVoice {
		return nil, ErrUnsupportedVoice
	}

	var opts []option.ClientOption
	if t.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(t.CredentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	// The API caps a request at 5000 input bytes.
	chunks := splitTextByBytes(text, 4500)
	var audio []byte
	for _, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: "en-US",
				Name:         voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			},
		}
		resp, err := client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		audio = append(audio, resp.AudioContent...)
	}
	return audio, nil
}

// splitTextByBytes cuts text into chunks of at most maxBytes, preferring
// sentence boundaries and never splitting a UTF-8 sequence.
func splitTextByBytes(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cut := maxBytes
		for i := cut; i > 0; i-- {
			c := remaining[i-1]
			if c == '.' || c == '!' || c == '?' || c == '\n' {
				cut = i
				break
			}
		}
		for cut < len(remaining) && (remaining[cut]&0xC0) == 0x80 {
			cut++
		}

		chunks = append(chunks, remaining[:cut])
		remaining = remaining[cut:]
	}
	return chunks
}
