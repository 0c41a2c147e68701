package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted US number", "+1 (555) 123-4567", "+15551234567"},
		{"bare extension", "2000", "2000"},
		{"leading whitespace", "  +49 30 1234", "+49301234"},
		{"plus not leading is dropped", "00+495551234", "00495551234"},
		{"letters stripped", "call 555 now", "555"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.in)
			assert.Equal(t, tt.want, got)
			// idempotent
			assert.Equal(t, got, NormalizePhone(got))
		})
	}
}

func TestExtractAliases(t *testing.T) {
	rec := Extract(Payload{
		"event":       "NOTIFY_END",
		"pbx_call_id": "pbx-1",
		"caller_id":   "+1 (555) 123-4567",
		"destination": "2000",
		"internal":    "101",
		"duration":    "42",
		"disposition": "answered",
		"is_recorded": "1",
	})
	assert.Equal(t, "NOTIFY_END", rec.Event)
	assert.Equal(t, "pbx-1", rec.CallID)
	assert.Equal(t, "+15551234567", rec.From)
	assert.Equal(t, "2000", rec.To)
	assert.Equal(t, "101", rec.Internal)
	assert.Equal(t, 42, rec.DurationSeconds)
	assert.Equal(t, "answered", rec.Disposition)
	assert.True(t, rec.IsRecorded)
}

func TestExtractSecondaryAliases(t *testing.T) {
	rec := Extract(Payload{
		"Event":      "call_end",
		"call_id":    "c-2",
		"caller":     "555",
		"called_did": "+15550001111",
		"extension":  "202",
		"billsec":    float64(7),
		"recorded":   "0",
	})
	assert.Equal(t, "call_end", rec.Event)
	assert.Equal(t, "c-2", rec.CallID)
	assert.Equal(t, "555", rec.From)
	assert.Equal(t, "+15550001111", rec.To)
	assert.Equal(t, "202", rec.Internal)
	assert.Equal(t, 7, rec.DurationSeconds)
	assert.False(t, rec.IsRecorded)
}

func TestExtractDefaults(t *testing.T) {
	rec := Extract(Payload{"unrelated": "x"})
	assert.Equal(t, "", rec.Event)
	assert.Equal(t, "", rec.CallID)
	assert.Equal(t, 0, rec.DurationSeconds)
	assert.Equal(t, DirectionUnknown, rec.Direction)
	assert.False(t, rec.IsFinished())
}

func TestExtractBadDuration(t *testing.T) {
	rec := Extract(Payload{"duration": "soon"})
	assert.Equal(t, 0, rec.DurationSeconds)
}

func TestIsFinished(t *testing.T) {
	tests := []struct {
		event string
		want  bool
	}{
		{"NOTIFY_END", true},
		{"call_end", true},
		{"CALL_FINISHED", true},
		{"notify_internal_end", true},
		{"NOTIFY_START", false},
		{"NOTIFY_ANSWER", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			rec := Extract(Payload{"event": tt.event})
			assert.Equal(t, tt.want, rec.IsFinished())
		})
	}
}

func TestClassifyDirectionRuleOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    Direction
	}{
		{"OUT wins first", Payload{"event": "NOTIFY_OUT_START"}, DirectionOutbound},
		{"INTERNAL before START rules", Payload{"event": "INTERNAL_START"}, DirectionInbound},
		{
			"START with called_did and no extension is inbound",
			Payload{"event": "NOTIFY_START", "called_did": "+15550001111"},
			DirectionInbound,
		},
		{
			"START with extension and destination is outbound",
			Payload{"event": "NOTIFY_START", "internal": "101", "destination": "+15550001111"},
			DirectionOutbound,
		},
		{
			"START with extension but no destination is unknown",
			Payload{"event": "NOTIFY_START", "internal": "101"},
			DirectionUnknown,
		},
		{"no signals", Payload{"event": "NOTIFY_ANSWER"}, DirectionUnknown},
		{
			"called_did present alongside extension skips rule 3",
			Payload{"event": "NOTIFY_START", "called_did": "+1555", "internal": "101"},
			DirectionUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.payload).Direction)
		})
	}
}

func TestExternalPhone(t *testing.T) {
	out := Record{Direction: DirectionOutbound, From: "101", To: "+1555"}
	assert.Equal(t, "+1555", out.ExternalPhone())

	in := Record{Direction: DirectionInbound, From: "+1555", To: "2000"}
	assert.Equal(t, "+1555", in.ExternalPhone())

	unk := Record{Direction: DirectionUnknown, From: "+1555", To: "2000"}
	assert.Equal(t, "+1555", unk.ExternalPhone())
}
