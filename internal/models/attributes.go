package models

import (
	"encoding/json"
	"sort"
)

// AttributeKey is a canonical attribute name. The key set is closed:
// values under any other key are never stored.
type AttributeKey string

const (
	KeyProcessor    AttributeKey = "processor"
	KeyRAM          AttributeKey = "ram"
	KeyStorage      AttributeKey = "storage"
	KeyDisplaySize  AttributeKey = "display_size"
	KeyDisplayType  AttributeKey = "display_type"
	KeyResolution   AttributeKey = "resolution"
	KeyAspectRatio  AttributeKey = "aspect_ratio"
	KeyTouch        AttributeKey = "touch"
	KeyGPU          AttributeKey = "gpu"
	KeyOS           AttributeKey = "os"
	KeyPCType       AttributeKey = "pc_type"
	KeyWeight       AttributeKey = "weight"
	KeyBattery      AttributeKey = "battery"
	KeyConnectivity AttributeKey = "connectivity"
	KeyPorts        AttributeKey = "ports"
)

// CanonicalKeys lists every allowed attribute key in display order.
var CanonicalKeys = []AttributeKey{
	KeyProcessor, KeyRAM, KeyStorage, KeyDisplaySize, KeyDisplayType,
	KeyResolution, KeyAspectRatio, KeyTouch, KeyGPU, KeyOS, KeyPCType,
	KeyWeight, KeyBattery, KeyConnectivity, KeyPorts,
}

var canonicalKeySet = func() map[AttributeKey]bool {
	m := make(map[AttributeKey]bool, len(CanonicalKeys))
	for _, k := range CanonicalKeys {
		m[k] = true
	}
	return m
}()

// IsCanonicalKey reports whether k belongs to the closed key set.
func IsCanonicalKey(k AttributeKey) bool { return canonicalKeySet[k] }

// AttributeMap is a normalized canonical-key -> value map built up across
// enrichment layers. Once a key is set by a higher-trust source it is never
// overwritten by a lower-trust one, which is why the only mutator is
// SetIfAbsent.
type AttributeMap map[AttributeKey]string

// NewAttributeMap returns an empty attribute map.
func NewAttributeMap() AttributeMap { return make(AttributeMap) }

// SetIfAbsent stores value under key unless the key is already populated,
// the key is outside the canonical set, or the value is empty. It reports
// whether the value was stored.
func (m AttributeMap) SetIfAbsent(key AttributeKey, value string) bool {
	if value == "" || !canonicalKeySet[key] {
		return false
	}
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = value
	return true
}

// Get returns the value for key, or "" when unset.
func (m AttributeMap) Get(key AttributeKey) string { return m[key] }

// Has reports whether every given key is populated.
func (m AttributeMap) Has(keys ...AttributeKey) bool {
	for _, k := range keys {
		if m[k] == "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the map.
func (m AttributeMap) Clone() AttributeMap {
	out := make(AttributeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MergeUnder fills gaps in m from other without overwriting anything
// already present. Returns the number of keys adopted.
func (m AttributeMap) MergeUnder(other AttributeMap) int {
	adopted := 0
	for k, v := range other {
		if m.SetIfAbsent(k, v) {
			adopted++
		}
	}
	return adopted
}

// SortedKeys returns the populated keys in canonical display order.
func (m AttributeMap) SortedKeys() []AttributeKey {
	order := make(map[AttributeKey]int, len(CanonicalKeys))
	for i, k := range CanonicalKeys {
		order[k] = i
	}
	keys := make([]AttributeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}

// MarshalJSON serializes with stable key ordering so content hashes are
// deterministic.
func (m AttributeMap) MarshalJSON() ([]byte, error) {
	ordered := make(map[string]string, len(m))
	for k, v := range m {
		ordered[string(k)] = v
	}
	return json.Marshal(ordered)
}
