package fuzzy

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PatientIDKey is the payload key carrying the optional patient identity.
const PatientIDKey = "patient_id"

// Payload is a questionnaire as handed over by the intake collaborator:
// criterion keys (canonical names, short aliases or display labels) mapped to
// numbers on a 0–10 or 0–1 scale, plus an optional patient_id.
type Payload map[string]any

// PatientID returns the payload's patient identity, or nil if absent or not an integer.
func (p Payload) PatientID() *int {
	raw, ok := p[PatientIDKey]
	if !ok {
		return nil
	}
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) {
		return nil
	}
	id := int(f)
	return &id
}

// Vector converts the payload to crisp inputs. Unknown keys and non-numeric
// values are dropped. With rescaleUnit, any value in [0,1] is taken to be on the
// unit scale and multiplied by 10. Every value is clamped to [0,10]. When two
// keys name the same criterion the one sorting last wins.
func (p Payload) Vector(rescaleUnit bool) Vector {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k != PatientIDKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	v := make(Vector, len(Inputs))
	for _, k := range keys {
		raw := p[k]
		name, ok := Lookup(k)
		if !ok {
			continue
		}
		x, ok := toFloat(raw)
		if !ok {
			continue
		}
		if rescaleUnit && x >= 0 && x <= 1 {
			x *= 10
		}
		v[name] = clamp10(x)
	}
	return v
}

func toFloat(raw any) (float64, bool) {
	var f float64
	switch x := raw.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
