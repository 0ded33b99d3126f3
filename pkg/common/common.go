package common

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	snowNode     *snowflake.Node
	snowNodeOnce sync.Once
)

// UUID returns a random (v4) uuid string.
func UUID() string {
	return uuid.NewString()
}

// UUIDint64 returns a time-ordered unique int64, used for log style records.
func UUIDint64() int64 {
	snowNodeOnce.Do(func() {
		node, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		snowNode = node
	})
	return snowNode.Generate().Int64()
}

// EndOfDay returns the last representable millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// SplitTrim splits s on sep, trimming blanks and dropping empty parts.
func SplitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// StrPtr returns nil for blank strings.
func StrPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
