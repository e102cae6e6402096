package constants

// DocumentStatus is the lifecycle state of an uploaded document.
type DocumentStatus string

// Stable values (these exact strings are surfaced to callers and logs).
const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed" // terminal
	StatusFailed     DocumentStatus = "failed"    // terminal
)

// Terminal reports whether no further transition is possible without an explicit reprocess.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ConnectionStatus is the AI backend connectivity state shown to operators.
type ConnectionStatus string

const (
	ConnectionIdle      ConnectionStatus = "idle"
	ConnectionTesting   ConnectionStatus = "testing"
	ConnectionConnected ConnectionStatus = "connected"
	ConnectionFailed    ConnectionStatus = "failed"
)

// RecordSource tells AI-derived records apart from fallback-derived ones.
type RecordSource string

const (
	SourceAI       RecordSource = "ai"
	SourceFallback RecordSource = "fallback"
)
