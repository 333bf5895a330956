package record

import (
	"fmt"
	"strconv"

	"github.com/cyra/ngxlog/internal/parser"
)

// Header is the output column order. Consumers parse by these names.
var Header = []string{"Timestamp", "SourceIP", "UpstreamIP", "SizeReq", "SizeResp", "Status", "ErrorDescription"}

// LogRecord is one output row. Exactly one of Status != 0 and ErrorDescription != "" holds.
type LogRecord struct {
	Timestamp        string
	SourceIP         string
	UpstreamIP       string
	SizeReq          int64
	SizeResp         int64
	Status           int
	ErrorDescription string
}

// FromAccess builds a record from an access event and its canonical timestamp.
func FromAccess(ev *parser.Event, ts string) LogRecord {
	return LogRecord{
		Timestamp:  ts,
		SourceIP:   ev.SourceIP,
		UpstreamIP: ev.Upstream,
		SizeReq:    ev.SizeReq,
		SizeResp:   ev.SizeResp,
		Status:     ev.Status,
	}
}

// FromError builds a record from an error event and its canonical timestamp.
func FromError(ev *parser.Event, ts string) LogRecord {
	return LogRecord{
		Timestamp:        ts,
		SourceIP:         ev.SourceIP,
		UpstreamIP:       ev.Upstream,
		ErrorDescription: fmt.Sprintf("%s: %s", ev.Level, ev.Message),
	}
}

// From dispatches on the event kind.
func From(ev *parser.Event, ts string) LogRecord {
	if ev.Kind == parser.KindError {
		return FromError(ev, ts)
	}
	return FromAccess(ev, ts)
}

// IsError reports whether the record came from the error log.
func (r LogRecord) IsError() bool {
	return r.Status == 0
}

// Row renders the record in Header order.
func (r LogRecord) Row() []string {
	return []string{
		r.Timestamp,
		r.SourceIP,
		r.UpstreamIP,
		strconv.FormatInt(r.SizeReq, 10),
		strconv.FormatInt(r.SizeResp, 10),
		strconv.Itoa(r.Status),
		r.ErrorDescription,
	}
}
