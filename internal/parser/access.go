package parser

import (
	"regexp"
	"strconv"
)

// nginx stream access log, e.g.
// 192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 1024 2048 0.532 "10.0.0.5:5432"

var accessRe = regexp.MustCompile(`(?P<source_ip>\d+\.\d+\.\d+\.\d+) \[(?P<timestamp>[^\]]+)\] TCP (?P<status>\d{3}) (?P<size_req>\d+) (?P<size_resp>\d+) (?P<duration>\d+\.\d+) "(?P<upstream>\d+\.\d+\.\d+\.\d+:\d+)"`)

var (
	accessSourceIP  = accessRe.SubexpIndex("source_ip")
	accessTimestamp = accessRe.SubexpIndex("timestamp")
	accessStatus    = accessRe.SubexpIndex("status")
	accessSizeReq   = accessRe.SubexpIndex("size_req")
	accessSizeResp  = accessRe.SubexpIndex("size_resp")
	accessDuration  = accessRe.SubexpIndex("duration")
	accessUpstream  = accessRe.SubexpIndex("upstream")
)

type accessMatcher struct{}

func newAccessMatcher() *accessMatcher {
	return &accessMatcher{}
}

func (m *accessMatcher) Match(line string) (*Event, bool) {
	g := accessRe.FindStringSubmatch(line)
	if g == nil {
		return nil, false
	}

	status, err := strconv.Atoi(g[accessStatus])
	if err != nil {
		return nil, false
	}
	sizeReq, err := strconv.ParseInt(g[accessSizeReq], 10, 64)
	if err != nil {
		return nil, false
	}
	sizeResp, err := strconv.ParseInt(g[accessSizeResp], 10, 64)
	if err != nil {
		return nil, false
	}

	return &Event{
		Kind:         KindAccess,
		SourceIP:     g[accessSourceIP],
		RawTimestamp: g[accessTimestamp],
		Upstream:     g[accessUpstream],
		Status:       status,
		SizeReq:      sizeReq,
		SizeResp:     sizeResp,
		Duration:     g[accessDuration],
	}, true
}
