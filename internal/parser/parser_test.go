package parser

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func mustMatcher(t *testing.T, kind Kind) Matcher {
	t.Helper()
	m, err := New(kind)
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return m
}

func TestAccessMatcher(t *testing.T) {
	m := mustMatcher(t, KindAccess)

	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "basic",
			line: `192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 1024 2048 0.532 "10.0.0.5:5432"`,
			want: Event{Kind: KindAccess, SourceIP: "192.168.1.10", RawTimestamp: "10/Oct/2023:13:55:36 +0000",
				Status: 200, SizeReq: 1024, SizeResp: 2048, Duration: "0.532", Upstream: "10.0.0.5:5432"},
		},
		{
			name: "zero sizes and failure status",
			line: `10.1.2.3 [01/Jan/2024:00:00:00 -0500] TCP 502 0 0 60.001 "10.0.0.9:3306"`,
			want: Event{Kind: KindAccess, SourceIP: "10.1.2.3", RawTimestamp: "01/Jan/2024:00:00:00 -0500",
				Status: 502, SizeReq: 0, SizeResp: 0, Duration: "60.001", Upstream: "10.0.0.9:3306"},
		},
		{
			name: "prefix and trailing fields",
			line: `stream: 172.16.0.1 [10/Oct/2023:13:55:36 +0000] TCP 200 5 6 0.000 "10.0.0.5:80" extra stuff`,
			want: Event{Kind: KindAccess, SourceIP: "172.16.0.1", RawTimestamp: "10/Oct/2023:13:55:36 +0000",
				Status: 200, SizeReq: 5, SizeResp: 6, Duration: "0.000", Upstream: "10.0.0.5:80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := m.Match(tt.line)
			if !ok {
				t.Fatalf("Match(%q) did not match", tt.line)
			}
			if *ev != tt.want {
				t.Errorf("Match = %+v, want %+v", *ev, tt.want)
			}
		})
	}
}

func TestAccessMatcherNumbersRoundTrip(t *testing.T) {
	m := mustMatcher(t, KindAccess)
	for _, c := range []struct{ status, req, resp string }{
		{"200", "0", "0"},
		{"404", "123456789", "987654321"},
		{"500", "9223372036854775807", "1"},
	} {
		line := `1.2.3.4 [10/Oct/2023:13:55:36 +0000] TCP ` + c.status + " " + c.req + " " + c.resp + ` 1.0 "5.6.7.8:9"`
		ev, ok := m.Match(line)
		if !ok {
			t.Fatalf("Match(%q) did not match", line)
		}
		if strconv.Itoa(ev.Status) != c.status {
			t.Errorf("status = %d, want %s", ev.Status, c.status)
		}
		if strconv.FormatInt(ev.SizeReq, 10) != c.req {
			t.Errorf("size_req = %d, want %s", ev.SizeReq, c.req)
		}
		if strconv.FormatInt(ev.SizeResp, 10) != c.resp {
			t.Errorf("size_resp = %d, want %s", ev.SizeResp, c.resp)
		}
	}
}

func TestAccessMatcherRejects(t *testing.T) {
	m := mustMatcher(t, KindAccess)
	lines := []string{
		"",
		"   ",
		"-- log rotated --",
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] UDP 200 1024 2048 0.532 "10.0.0.5:5432"`,
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 20 1024 2048 0.532 "10.0.0.5:5432"`,
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 1024 2048 0.532 "10.0.0.5"`,
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 1024 2048 1 "10.0.0.5:5432"`,
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 99999999999999999999 2048 0.532 "10.0.0.5:5432"`,
		`2023/10/10 13:55:36 [error] 1#0: *1 boom, client: 1.2.3.4, server: x, upstream: "5.6.7.8:9",`,
	}
	for _, line := range lines {
		if ev, ok := m.Match(line); ok {
			t.Errorf("Match(%q) = %+v, want no match", line, ev)
		}
	}
}

func TestErrorMatcher(t *testing.T) {
	m := mustMatcher(t, KindError)

	line := `2023/10/10 13:55:36 [error] 1234#0: *5678 connect() failed (111: Connection refused) while connecting to upstream, client: 192.168.1.10, server: 0.0.0.0:5432, upstream: "10.0.0.5:5432", bytes from/to client:0/0, bytes from/to upstream:0/0`
	ev, ok := m.Match(line)
	if !ok {
		t.Fatalf("Match did not match")
	}
	want := Event{
		Kind:         KindError,
		SourceIP:     "192.168.1.10",
		RawTimestamp: "2023/10/10 13:55:36",
		Upstream:     "10.0.0.5:5432",
		Level:        "error",
		Message:      "connect() failed (111: Connection refused) while connecting to upstream",
		RequestID:    "5678",
	}
	if *ev != want {
		t.Errorf("Match = %+v, want %+v", *ev, want)
	}
}

func TestErrorMatcherMessageIsNonGreedy(t *testing.T) {
	m := mustMatcher(t, KindError)

	line := `2023/10/10 13:55:36 [warn] 1#2: *3 upstream timed out, retrying, giving up, client: 10.0.0.1, server: a, upstream: "10.0.0.2:80", note: see, client: 9.9.9.9`
	ev, ok := m.Match(line)
	if !ok {
		t.Fatalf("Match did not match")
	}
	if ev.Message != "upstream timed out, retrying, giving up" {
		t.Errorf("Message = %q", ev.Message)
	}
	if strings.Contains(ev.Message, "client:") {
		t.Errorf("Message spans past the first client token: %q", ev.Message)
	}
	if ev.SourceIP != "10.0.0.1" || ev.Level != "warn" || ev.Upstream != "10.0.0.2:80" {
		t.Errorf("unexpected fields: %+v", *ev)
	}
}

func TestErrorMatcherRejects(t *testing.T) {
	m := mustMatcher(t, KindError)
	lines := []string{
		"",
		"2023/10/10 13:55:36 [notice] 1#1: signal process started",
		`2023/10/10 13:55:36 [error] 1#0: 5 missing star, client: 1.2.3.4, server: x, upstream: "5.6.7.8:9",`,
		`2023/10/10 13:55:36 [error] 1#0: *5 no upstream, client: 1.2.3.4, server: x`,
		`2023/10/10 13:55:36 [error] 1#0: *5 no trailing comma, client: 1.2.3.4, server: x, upstream: "5.6.7.8:9"`,
		`192.168.1.10 [10/Oct/2023:13:55:36 +0000] TCP 200 1024 2048 0.532 "10.0.0.5:5432"`,
	}
	for _, line := range lines {
		if ev, ok := m.Match(line); ok {
			t.Errorf("Match(%q) = %+v, want no match", line, ev)
		}
	}
}

func TestMatchersTolerateLongLines(t *testing.T) {
	m := mustMatcher(t, KindError)
	msg := strings.Repeat("x", 1<<20)
	line := `2023/10/10 13:55:36 [crit] 1#0: *9 ` + msg + `, client: 1.1.1.1, server: s, upstream: "2.2.2.2:22",`
	ev, ok := m.Match(line)
	if !ok {
		t.Fatalf("long line did not match")
	}
	if len(ev.Message) != len(msg) {
		t.Errorf("message length = %d, want %d", len(ev.Message), len(msg))
	}
}

func TestKind(t *testing.T) {
	if KindAccess.FileName() != "access-stream.log" || KindError.FileName() != "error.log" {
		t.Errorf("unexpected file names: %q %q", KindAccess.FileName(), KindError.FileName())
	}
	if KindAccess.Layout() == KindError.Layout() {
		t.Error("kinds share a timestamp layout")
	}
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("syslog"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(syslog) err = %v, want ErrUnknownKind", err)
	}
	if _, err := New(Kind(7)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("New(7) err = %v, want ErrUnknownKind", err)
	}
}
