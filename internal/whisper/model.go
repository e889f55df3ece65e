package whisper

import "context"

const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate" // translates the audio into English
)

// Options holds the knobs forwarded to the model for a single invocation.
// Language is omitted from the request when empty; the model auto-detects.
type Options struct {
	Language       string
	Task           string
	WordTimestamps bool
	Temperature    float64
}

// Word is a single word with its position in the audio, in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a timed span of transcribed text.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Result holds a completed transcription. Segments is never nil; silent
// audio yields an empty slice.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Transcriber is the model handle: a long-lived, read-only view of a loaded
// speech model. Implementations must be safe for concurrent use.
type Transcriber interface {
	// Transcribe retrieves the audio behind audioURL and runs inference.
	// It blocks for the full duration of the call; there is no internal
	// timeout and no progress reporting.
	Transcribe(ctx context.Context, audioURL string, opts Options) (*Result, error)
	Model() string
}

// TranscriptionError wraps any failure raised by a transcription attempt:
// unreachable audio, unsupported format, inference failure. Subtypes are
// not distinguished.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
