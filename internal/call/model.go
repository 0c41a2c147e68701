package call

// Direction is the derived direction of a call. Providers encode direction
// inconsistently across event types, so it is always inferred, never read
// from a single payload field.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionUnknown  Direction = "unknown"
)

// Record is the canonical view of one provider call event. It is built once
// per inbound webhook and never mutated afterwards.
type Record struct {
	Event           string    `json:"event"`
	CallID          string    `json:"call_id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Internal        string    `json:"internal"`
	Direction       Direction `json:"direction"`
	DurationSeconds int       `json:"duration_seconds"`
	Disposition     string    `json:"disposition"`
	IsRecorded      bool      `json:"is_recorded"`
}

// ExternalPhone returns the number of the non-PBX party: the dialed number
// for outbound calls, the caller id otherwise.
func (r Record) ExternalPhone() string {
	if r.Direction == DirectionOutbound {
		return r.To
	}
	return r.From
}
