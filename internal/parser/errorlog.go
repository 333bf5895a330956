package parser

import "regexp"

// nginx error log, e.g.
// 2023/10/10 13:55:36 [error] 1234#0: *5678 connect() failed (111: Connection refused) while connecting to upstream, client: 192.168.1.10, server: 0.0.0.0:5432, upstream: "10.0.0.5:5432", bytes from/to client:0/0

// The message is non-greedy so it stops at the first ", client:" even when it contains commas.
var errorRe = regexp.MustCompile(`(?P<timestamp>\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) \[(?P<level>\w+)\] \d+#\d+: \*(?P<request_id>\d+) (?P<message>.+?), client: (?P<source_ip>\d+\.\d+\.\d+\.\d+), server: [^,]+, upstream: "(?P<upstream>[^"]+)",`)

var (
	errorTimestamp = errorRe.SubexpIndex("timestamp")
	errorLevel     = errorRe.SubexpIndex("level")
	errorRequestID = errorRe.SubexpIndex("request_id")
	errorMessage   = errorRe.SubexpIndex("message")
	errorSourceIP  = errorRe.SubexpIndex("source_ip")
	errorUpstream  = errorRe.SubexpIndex("upstream")
)

type errorMatcher struct{}

func newErrorMatcher() *errorMatcher {
	return &errorMatcher{}
}

func (m *errorMatcher) Match(line string) (*Event, bool) {
	g := errorRe.FindStringSubmatch(line)
	if g == nil {
		return nil, false
	}

	return &Event{
		Kind:         KindError,
		SourceIP:     g[errorSourceIP],
		RawTimestamp: g[errorTimestamp],
		Upstream:     g[errorUpstream],
		Level:        g[errorLevel],
		Message:      g[errorMessage],
		RequestID:    g[errorRequestID],
	}, true
}
