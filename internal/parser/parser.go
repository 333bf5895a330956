package parser

import (
	"errors"
	"fmt"

	"github.com/cyra/ngxlog/internal/timestamp"
)

// ErrUnknownKind is returned when an unsupported log kind is requested.
var ErrUnknownKind = errors.New("unknown log kind")

// Kind identifies which of the two nginx log shapes a file holds.
type Kind int

const (
	KindAccess Kind = iota
	KindError
)

// Kinds lists every kind in processing order.
var Kinds = []Kind{KindAccess, KindError}

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FileName is the exact file name the kind is read from.
func (k Kind) FileName() string {
	switch k {
	case KindAccess:
		return "access-stream.log"
	case KindError:
		return "error.log"
	default:
		return ""
	}
}

// Layout is the timestamp layout lines of this kind are logged with.
func (k Kind) Layout() string {
	switch k {
	case KindAccess:
		return timestamp.AccessLayout
	case KindError:
		return timestamp.ErrorLayout
	default:
		return ""
	}
}

// ParseKind maps "access" / "error" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "access", "access_stream", "stream":
		return KindAccess, nil
	case "error":
		return KindError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Event holds the fields a matcher captured from one line, verbatim.
// Access lines fill Status, sizes, Duration; error lines fill Level, Message, RequestID.
type Event struct {
	Kind         Kind
	SourceIP     string
	RawTimestamp string
	Upstream     string

	Status   int
	SizeReq  int64
	SizeResp int64
	Duration string

	Level     string
	Message   string
	RequestID string
}

// Matcher extracts an Event from a single line. ok is false when the line has another shape.
type Matcher interface {
	Match(line string) (ev *Event, ok bool)
}

// New returns the matcher for kind.
func New(kind Kind) (Matcher, error) {
	switch kind {
	case KindAccess:
		return newAccessMatcher(), nil
	case KindError:
		return newErrorMatcher(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
