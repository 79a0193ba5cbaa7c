package models

import "time"

type TimestampKind int

const (
	// TimestampUnset means the store had no creation time for the record.
	TimestampUnset TimestampKind = iota
	// TimestampServer is a time assigned by the database at insert.
	TimestampServer
	// TimestampMillis is a raw epoch-milliseconds value written by a client.
	TimestampMillis
)

// Timestamp is the creation time of a stored task in one of three forms.
type Timestamp struct {
	kind   TimestampKind
	server time.Time
	millis int64
}

func ServerTime(t time.Time) Timestamp {
	return Timestamp{kind: TimestampServer, server: t}
}

func Millis(ms int64) Timestamp {
	return Timestamp{kind: TimestampMillis, millis: ms}
}

func Unset() Timestamp {
	return Timestamp{}
}

func (ts Timestamp) Kind() TimestampKind {
	return ts.kind
}

// Resolve returns epoch milliseconds, using now when the value is unset.
func (ts Timestamp) Resolve(now time.Time) int64 {
	switch ts.kind {
	case TimestampServer:
		return ts.server.UnixMilli()
	case TimestampMillis:
		return ts.millis
	default:
		return now.UnixMilli()
	}
}

func (k TimestampKind) String() string {
	switch k {
	case TimestampServer:
		return "server"
	case TimestampMillis:
		return "millis"
	default:
		return "unset"
	}
}
