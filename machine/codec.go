package machine

import (
	"encoding/json"

	"github.com/provlabs/lease/types"
)

// Version of the persisted states. Records of an older version are migrated
// before use.
const Version uint16 = 9

// Record is a persisted state: its tag with its payload.
type Record struct {
	V       uint16          `json:"v"`
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

// Encode stores s at the current version.
func Encode(s State) (Record, error) {
	bz, err := json.Marshal(s)
	if err != nil {
		return Record{}, types.ErrCorruptedState.Wrapf("encoding %s: %s", s.Name(), err)
	}
	return Record{V: Version, Tag: s.Name(), Payload: bz}, nil
}

// Decode loads the state of r.
func Decode(r Record) (State, error) {
	switch {
	case r.V < Version:
		return nil, types.ErrMigrationRequired.Wrapf("version %d", r.V)
	case r.V > Version:
		return nil, types.ErrCorruptedState.Wrapf("unknown version %d", r.V)
	}

	var s State
	switch r.Tag {
	case RequestLoan{}.Name():
		s = &RequestLoan{}
	case OpenIca{}.Name():
		s = &OpenIca{}
	case Swap{}.Name():
		s = &Swap{}
	case Active{}.Name():
		s = &Active{}
	case Paid{}.Name():
		s = &Paid{}
	case Closed{}.Name():
		s = &Closed{}
	case Liquidated{}.Name():
		s = &Liquidated{}
	case SlippageAnomaly{}.Name():
		s = &SlippageAnomaly{}
	case InRecovery{}.Name():
		s = &InRecovery{}
	case ResponseDelivery{}.Name():
		s = &ResponseDelivery{}
	default:
		return nil, types.ErrCorruptedState.Wrapf("unknown state %q", r.Tag)
	}
	if err := json.Unmarshal(r.Payload, s); err != nil {
		return nil, types.ErrCorruptedState.Wrapf("decoding %s: %s", r.Tag, err)
	}
	return deref(s), nil
}

// deref turns the decoding target back into the value states handlers run on.
func deref(s State) State {
	switch v := s.(type) {
	case *RequestLoan:
		return *v
	case *OpenIca:
		return *v
	case *Swap:
		return *v
	case *Active:
		return *v
	case *Paid:
		return *v
	case *Closed:
		return *v
	case *Liquidated:
		return *v
	case *SlippageAnomaly:
		return *v
	case *InRecovery:
		return *v
	case *ResponseDelivery:
		return *v
	default:
		return s
	}
}
