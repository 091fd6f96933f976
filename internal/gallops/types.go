// Package gallops implements the Gallops root document: its types, the
// semantic validator, and atomic load/save.
package gallops

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status is a Heat's lifecycle state.
type Status string

const (
	StatusRacing  Status = "racing"
	StatusStabled Status = "stabled"
	StatusRetired Status = "retired"
)

// TackState is a Tack's refinement state. "primed" is accepted on
// unmarshal as a deprecated alias for "bridled" but never produced.
type TackState string

const (
	StateRough    TackState = "rough"
	StateBridled  TackState = "bridled"
	StateComplete TackState = "complete"
	StateAbandoned TackState = "abandoned"

	legacyPrimedAlias = "primed"
)

// Tack is a single state-plus-plan snapshot for a Pace.
type Tack struct {
	Ts        string    `json:"ts"`
	State     TackState `json:"state"`
	Text      string    `json:"text"`
	Silks     string    `json:"silks"`
	Basis     string    `json:"basis"`
	Direction *string   `json:"direction,omitempty"`
}

// UnmarshalJSON accepts the deprecated "primed" state alias, normalizing it
// to "bridled" on read; it is never written back out.
func (t *Tack) UnmarshalJSON(data []byte) error {
	type alias Tack
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if string(a.State) == legacyPrimedAlias {
		a.State = StateBridled
	}
	*t = Tack(a)
	return nil
}

// Pace is an ordered, prepend-only stack of Tacks; Tacks[0] is current.
type Pace struct {
	Tacks []Tack `json:"tacks"`
}

// Heat is a bounded initiative: an ordered list of Paces plus lifecycle and
// paddock metadata.
type Heat struct {
	Silks        string          `json:"silks"`
	CreationTime string          `json:"creation_time"`
	Status       Status          `json:"status"`
	Order        []string        `json:"order"`
	NextPaceSeed string          `json:"next_pace_seed"`
	PaddockFile  string          `json:"paddock_file"`
	Paces        map[string]Pace `json:"paces"`
}

// Gallops is the root document: an ordered heats map plus the next-Firemark
// allocation seed.
type Gallops struct {
	NextHeatSeed string  `json:"next_heat_seed"`
	Heats        HeatMap `json:"heats"`
}

// HeatMap is an insertion-ordered map from Firemark display string to Heat.
// encoding/json has no notion of map key order, so HeatMap carries its own
// key-order slice alongside the data and implements Marshal/UnmarshalJSON to
// serialize as a plain JSON object whose member order matches insertion
// order (per spec.md, heat order is semantically significant: "promote to
// front" is a real operation, e.g. Furlough's reorder side-effect).
type HeatMap struct {
	order  []string
	values map[string]Heat
}

// NewHeatMap returns an empty, ready-to-use HeatMap.
func NewHeatMap() HeatMap {
	return HeatMap{values: make(map[string]Heat)}
}

// Len returns the number of heats.
func (m HeatMap) Len() int { return len(m.order) }

// Keys returns the Firemark keys in insertion order. The returned slice must
// not be mutated by the caller.
func (m HeatMap) Keys() []string { return m.order }

// Get returns the Heat for key and whether it was present.
func (m HeatMap) Get(key string) (Heat, bool) {
	h, ok := m.values[key]
	return h, ok
}

// Set inserts or updates key. New keys are appended to the end of the order.
func (m *HeatMap) Set(key string, h Heat) {
	if m.values == nil {
		m.values = make(map[string]Heat)
	}
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = h
}

// SetFront inserts key at the front of the order (or moves it there if
// already present), used by Nominate and Furlough's promote-to-front
// side effect.
func (m *HeatMap) SetFront(key string, h Heat) {
	if m.values == nil {
		m.values = make(map[string]Heat)
	}
	m.removeFromOrder(key)
	m.order = append([]string{key}, m.order...)
	m.values[key] = h
}

// PromoteToFront moves an existing key to the front of the order without
// changing its value. It is a no-op if key is absent.
func (m *HeatMap) PromoteToFront(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	m.removeFromOrder(key)
	m.order = append([]string{key}, m.order...)
}

// Delete removes key, preserving the relative order of the rest.
func (m *HeatMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.removeFromOrder(key)
}

func (m *HeatMap) removeFromOrder(key string) {
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

// MarshalJSON emits the heats as a JSON object whose member order matches
// insertion order.
func (m HeatMap) MarshalJSON() ([]byte, error) {
	// Members are encoded without HTML escaping, like the rest of the
	// canonical form that MarshalPretty writes.
	marshal := func(v any) ([]byte, error) {
		var b bytes.Buffer
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		err := enc.Encode(v)
		return bytes.TrimRight(b.Bytes(), "\n"), err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, recording member order as encountered
// using a streaming decoder (encoding/json does not expose object key order
// through the normal map-unmarshal path).
func (m *HeatMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("heats: expected JSON object")
	}

	order := make([]string, 0)
	values := make(map[string]Heat)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("heats: expected string key")
		}
		var h Heat
		if err := dec.Decode(&h); err != nil {
			return fmt.Errorf("heats[%s]: %w", key, err)
		}
		if _, exists := values[key]; !exists {
			order = append(order, key)
		}
		values[key] = h
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	m.order = order
	m.values = values
	return nil
}
