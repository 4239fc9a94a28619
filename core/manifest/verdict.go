package manifest

import (
	"fmt"
	"strings"
)

// Verdict is the expected judged outcome of a reference solution.
type Verdict string

const (
	VerdictAccepted          Verdict = "AC"
	VerdictTimeLimitExceeded Verdict = "TLE"
	VerdictWrongAnswer       Verdict = "WA"
)

var verdictAliases = map[string]Verdict{
	"ac":                  VerdictAccepted,
	"accepted":            VerdictAccepted,
	"tle":                 VerdictTimeLimitExceeded,
	"time-limit-exceeded": VerdictTimeLimitExceeded,
	"timelimitexceeded":   VerdictTimeLimitExceeded,
	"wa":                  VerdictWrongAnswer,
	"wrong-answer":        VerdictWrongAnswer,
	"wronganswer":         VerdictWrongAnswer,
}

// ParseVerdict accepts the wire names and long spellings, case-insensitively.
// An empty value yields VerdictAccepted.
func ParseVerdict(value string) (Verdict, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return VerdictAccepted, nil
	}
	verdict, ok := verdictAliases[strings.ReplaceAll(trimmed, "_", "-")]
	if !ok {
		return "", fmt.Errorf("unknown verdict %q (expected AC|TLE|WA)", value)
	}
	return verdict, nil
}

// Valid reports whether v is one of the wire verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictAccepted, VerdictTimeLimitExceeded, VerdictWrongAnswer:
		return true
	}
	return false
}

// String returns the wire name.
func (v Verdict) String() string {
	return string(v)
}
