package ragerr

import (
	"errors"
	"fmt"
)

// Kind classifies a RAG failure so the HTTP boundary can translate it
// without inspecting error strings.
type Kind int

const (
	// KindDocumentProcessing covers bad input files, unsupported types,
	// empty content and chunking misconfiguration.
	KindDocumentProcessing Kind = iota
	// KindVectorStore covers index initialization and backend failures,
	// plus invalid query/k arguments.
	KindVectorStore
	// KindLLM covers model call failures and uninitialized chains.
	KindLLM
	// KindRetrieval covers empty questions and malformed history.
	KindRetrieval
)

func (k Kind) String() string {
	switch k {
	case KindDocumentProcessing:
		return "document_processing"
	case KindVectorStore:
		return "vector_store"
	case KindLLM:
		return "llm"
	case KindRetrieval:
		return "retrieval"
	}
	return "unknown"
}

// Error is the single error type shared by the RAG core. Matching is
// done on Kind via errors.As, never on the message text.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func DocumentProcessing(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDocumentProcessing, Message: fmt.Sprintf(format, args...)}
}

func VectorStore(format string, args ...interface{}) *Error {
	return &Error{Kind: KindVectorStore, Message: fmt.Sprintf(format, args...)}
}

func LLM(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLLM, Message: fmt.Sprintf(format, args...)}
}

func Retrieval(format string, args ...interface{}) *Error {
	return &Error{Kind: KindRetrieval, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error, keeping the original
// message reachable through Unwrap.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// IsKind reports whether err is (or wraps) a RAG error with the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
