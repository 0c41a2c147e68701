package call

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is the raw webhook body: a loose key/value mapping whose key names
// vary by event type and PBX account configuration.
type Payload map[string]any

// Extract maps a raw provider payload onto a Record. Unrecognized keys are
// ignored; for each field the first non-empty alias wins.
func Extract(p Payload) Record {
	rec := Record{
		Event:           p.first("event", "Event"),
		CallID:          p.first("pbx_call_id", "call_id"),
		From:            NormalizePhone(p.first("caller_id", "caller", "from", "number_from")),
		To:              NormalizePhone(p.first("destination", "called_did", "to", "number_to")),
		Internal:        p.first("internal", "extension"),
		DurationSeconds: parseSeconds(p.first("duration", "billsec", "billing_seconds")),
		Disposition:     p.first("disposition"),
		IsRecorded:      p.first("is_recorded", "recorded") == "1",
	}
	rec.Direction = classifyDirection(p)
	return rec
}

// IsFinished reports whether the event marks the end of a call. Only finished
// calls trigger CRM side effects; everything else is acknowledged and dropped.
func (r Record) IsFinished() bool {
	ev := strings.ToLower(r.Event)
	return strings.Contains(ev, "end") || ev == "call_end" || strings.Contains(ev, "finished")
}

// classifyDirection guesses the call direction from the raw payload.
//
// The rules are first-match and their order matters: "OUT" and "INTERNAL"
// checks run before the "START" checks so an event like INTERNAL_START
// classifies as inbound. The heuristic is tuned to one operator's observed
// Zadarma logs and is not a general classifier; do not reorder or "fix" the
// ambiguous cases without provider documentation.
func classifyDirection(p Payload) Direction {
	event := strings.ToUpper(p.first("event", "Event"))
	hasInternal := p.first("internal", "extension") != ""
	hasDest := p.first("destination") != ""
	hasCalledDid := p.first("called_did") != ""

	switch {
	case strings.Contains(event, "OUT"):
		return DirectionOutbound
	case strings.Contains(event, "INTERNAL"):
		return DirectionInbound
	case strings.Contains(event, "START") && hasCalledDid && !hasInternal:
		return DirectionInbound
	case strings.Contains(event, "START") && hasInternal && hasDest:
		return DirectionOutbound
	}
	return DirectionUnknown
}

// NormalizePhone strips everything but ASCII digits, keeping a leading +.
// It is idempotent: normalizing an already-normalized number is a no-op.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' || r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// first returns the stringified value of the first alias present with a
// non-empty value.
func (p Payload) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := p[k]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers; call ids and durations arrive as either
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

func parseSeconds(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
