package prefs

import (
	"encoding/json"
)

// Fixed defaults applied whenever the persisted value cannot be parsed.
const (
	DefaultSnapInterval = 30
	DefaultWorkDayStart = "07:00"
	DefaultWorkDayEnd   = "22:00"
	DefaultView         = "week"
)

// Preferences controls calendar presentation: grid snap interval in
// minutes, visible working-day bounds, and the initial view.
type Preferences struct {
	SnapInterval int    `json:"snap_interval"`
	WorkDayStart string `json:"work_day_start"`
	WorkDayEnd   string `json:"work_day_end"`
	DefaultView  string `json:"default_view"`
}

// Defaults returns the fixed fallback preferences.
func Defaults() Preferences {
	return Preferences{
		SnapInterval: DefaultSnapInterval,
		WorkDayStart: DefaultWorkDayStart,
		WorkDayEnd:   DefaultWorkDayEnd,
		DefaultView:  DefaultView,
	}
}

// Parse decodes an opaque persisted preferences value. The backend
// returns preferences either as a JSON object or as a string holding
// one, and persisted copies may be stale or corrupt, so every failure
// mode falls back: unknown shapes and unparseable blobs yield the
// defaults wholesale, and individual missing fields are filled in.
// PRE: none
// POST: Returns usable preferences; never an error
func Parse(raw any) Preferences {
	switch v := raw.(type) {
	case nil:
		return Defaults()
	case Preferences:
		return fillDefaults(v)
	case string:
		return parseJSON([]byte(v))
	case []byte:
		return parseJSON(v)
	case map[string]any:
		// Round-trip through JSON rather than hand-walking the map.
		blob, err := json.Marshal(v)
		if err != nil {
			return Defaults()
		}
		return parseJSON(blob)
	default:
		return Defaults()
	}
}

func parseJSON(blob []byte) Preferences {
	var p Preferences
	if err := json.Unmarshal(blob, &p); err == nil {
		return fillDefaults(p)
	}
	// The blob may be a JSON string wrapping the object.
	var inner string
	if err := json.Unmarshal(blob, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &p); err == nil {
			return fillDefaults(p)
		}
	}
	return Defaults()
}

func fillDefaults(p Preferences) Preferences {
	if p.SnapInterval <= 0 {
		p.SnapInterval = DefaultSnapInterval
	}
	if p.WorkDayStart == "" {
		p.WorkDayStart = DefaultWorkDayStart
	}
	if p.WorkDayEnd == "" {
		p.WorkDayEnd = DefaultWorkDayEnd
	}
	if p.DefaultView == "" {
		p.DefaultView = DefaultView
	}
	return p
}
