package answer

import (
	"errors"

	"github.com/futig/docqa-bot/internal/entity"
)

// User-facing replies for failed questions
const (
	MsgMissingKey   = "Error: Google API Key is missing."
	MsgIndexMissing = "Error: My memory file (faiss_index) is missing."
	MsgProviderDown = "I'm having trouble connecting to the AI brain right now."
	MsgEmptyQuery   = "Please send me a question about the documents."
)

// Severity represents how loudly a failure is logged
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Failure is a classified pipeline error with the reply shown to the user
type Failure struct {
	Err         error
	Kind        entity.ErrorKind
	UserMessage string
	LogMessage  string
	Severity    Severity
}

// Classify maps a pipeline error onto its user reply and log severity
func Classify(err error) *Failure {
	kind := entity.KindOf(err)

	switch kind {
	case entity.KindConfig:
		return &Failure{
			Err:         err,
			Kind:        kind,
			UserMessage: MsgMissingKey,
			LogMessage:  "model API key is not configured",
			Severity:    SeverityError,
		}
	case entity.KindIndexUnavailable:
		return &Failure{
			Err:         err,
			Kind:        kind,
			UserMessage: MsgIndexMissing,
			LogMessage:  "index could not be loaded",
			Severity:    SeverityError,
		}
	case entity.KindEmptyQuery:
		return &Failure{
			Err:         err,
			Kind:        kind,
			UserMessage: MsgEmptyQuery,
			LogMessage:  "empty question",
			Severity:    SeverityWarning,
		}
	case entity.KindProvider:
		return &Failure{
			Err:         err,
			Kind:        kind,
			UserMessage: MsgProviderDown,
			LogMessage:  "model provider failed",
			Severity:    SeverityError,
		}
	}

	if kind == "" {
		err = errors.New("unclassified empty error")
	}
	return &Failure{
		Err:         err,
		Kind:        entity.KindUnknown,
		UserMessage: MsgProviderDown,
		LogMessage:  "answer pipeline failed",
		Severity:    SeverityError,
	}
}
