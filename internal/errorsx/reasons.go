package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// Startup failures. The daemon exits before entering its loop.
	ReasonConfiguration ReasonCode = "configuration"
	ReasonInputDevice   ReasonCode = "input_device"
	ReasonAudioDevice   ReasonCode = "audio_device"

	// Transcription failures. The session is aborted, the daemon keeps running.
	ReasonSTTConnect   ReasonCode = "stt_connect"
	ReasonSTTAuth      ReasonCode = "stt_auth"
	ReasonSTTRateLimit ReasonCode = "stt_rate_limit"
	ReasonSTTUnknown   ReasonCode = "stt_unknown"

	ReasonTyping ReasonCode = "typing"
)
