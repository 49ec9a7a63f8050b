package filters

import (
	"bytes"
	"encoding/json"
	"log"
	"time"

	"estatedash/internal/kv"
)

// Storage keys.
const (
	ActiveKey  = "filters:active"
	PresetsKey = "filters:presets"
)

// EnvelopeVersion tags the current active-filter format.
const EnvelopeVersion = "1.0"

// envelope is the versioned active-filter record. Older builds stored a bare
// FilterSet; DecodeActive accepts both.
type envelope struct {
	Version   string          `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Data      json.RawMessage `json:"data"`
}

// EncodeActive produces the versioned record for set.
func EncodeActive(set FilterSet, updatedAt time.Time) ([]byte, error) {
	data, err := json.Marshal(set.Clone())
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: EnvelopeVersion, UpdatedAt: updatedAt.UTC(), Data: data})
}

// DecodeActive parses a stored active-filter record: first as a versioned
// envelope, then as a legacy bare FilterSet. ok is false when neither parses.
// A legacy read is not rewritten; the next mutation stores the envelope.
func DecodeActive(data []byte) (FilterSet, bool) {
	if set, ok := decodeEnvelope(data); ok {
		return set, true
	}
	return decodeLegacy(data)
}

func decodeEnvelope(data []byte) (FilterSet, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	if env.Version == "" || len(env.Data) == 0 {
		return nil, false
	}
	return decodeSet(env.Data)
}

func decodeLegacy(data []byte) (FilterSet, bool) {
	return decodeSet(data)
}

func decodeSet(data []byte) (FilterSet, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var set FilterSet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return nil, false
	}
	if set == nil {
		set = FilterSet{}
	}
	return set, true
}

func loadActive(store kv.Store) (FilterSet, bool) {
	if store == nil {
		return nil, false
	}
	data, ok, err := store.Get(ActiveKey)
	if err != nil {
		log.Printf("filters.loadActive: failed to read %q: %v", ActiveKey, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	set, ok := DecodeActive(data)
	if !ok {
		log.Printf("filters.loadActive: ignoring unreadable %q", ActiveKey)
	}
	return set, ok
}

func saveActive(store kv.Store, set FilterSet, now time.Time) {
	if store == nil {
		return
	}
	data, err := EncodeActive(set, now)
	if err != nil {
		log.Printf("filters.saveActive: failed to encode: %v", err)
		return
	}
	if err := store.Set(ActiveKey, data); err != nil {
		log.Printf("filters.saveActive: failed to write %q: %v", ActiveKey, err)
	}
}

// storedPreset mirrors FilterConfig but defers decoding filters so a preset
// with a non-object filters field still loads and fails validation later.
type storedPreset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Filters   json.RawMessage `json:"filters"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int             `json:"version"`
}

// DecodePresets parses the stored preset array. Entries that are not JSON
// objects are dropped; a preset whose filters are not an object is kept with
// nil Filters so ValidateFilterConfig rejects it.
func DecodePresets(data []byte) ([]FilterConfig, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	out := make([]FilterConfig, 0, len(raw))
	for _, item := range raw {
		var sp storedPreset
		if err := json.Unmarshal(item, &sp); err != nil {
			continue
		}
		cfg := FilterConfig{
			ID:        sp.ID,
			Name:      sp.Name,
			CreatedAt: sp.CreatedAt,
			UpdatedAt: sp.UpdatedAt,
			Version:   sp.Version,
		}
		if set, ok := decodeSet(sp.Filters); ok {
			cfg.Filters = set
		}
		out = append(out, cfg)
	}
	return out, true
}

func loadPresets(store kv.Store) []FilterConfig {
	empty := []FilterConfig{}
	if store == nil {
		return empty
	}
	data, ok, err := store.Get(PresetsKey)
	if err != nil {
		log.Printf("filters.loadPresets: failed to read %q: %v", PresetsKey, err)
		return empty
	}
	if !ok {
		return empty
	}
	presets, ok := DecodePresets(data)
	if !ok {
		log.Printf("filters.loadPresets: ignoring malformed %q", PresetsKey)
		return empty
	}
	return presets
}

func savePresets(store kv.Store, presets []FilterConfig) {
	if store == nil {
		return
	}
	if presets == nil {
		presets = []FilterConfig{}
	}
	data, err := json.Marshal(presets)
	if err != nil {
		log.Printf("filters.savePresets: failed to encode: %v", err)
		return
	}
	if err := store.Set(PresetsKey, data); err != nil {
		log.Printf("filters.savePresets: failed to write %q: %v", PresetsKey, err)
	}
}
