package show

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParamType discriminates ParamValue.
type ParamType string

const (
	ParamFloat ParamType = "float"
	ParamInt   ParamType = "int"
	ParamBool  ParamType = "bool"
	ParamColor ParamType = "color"
	ParamText  ParamType = "text"
)

// ParamValue is a tagged effect parameter. Exactly one payload field is
// meaningful, selected by Type. It serializes as {"type": ..., "value": ...}.
type ParamValue struct {
	Type ParamType
	Num  float64    // ParamFloat and ParamInt
	Flag bool       // ParamBool
	RGB  [3]float64 // ParamColor, channels in [0, 1]
	Text string     // ParamText
}

func Float(v float64) ParamValue { return ParamValue{Type: ParamFloat, Num: v} }
func Int(v int) ParamValue       { return ParamValue{Type: ParamInt, Num: float64(v)} }
func Bool(v bool) ParamValue     { return ParamValue{Type: ParamBool, Flag: v} }
func Text(s string) ParamValue   { return ParamValue{Type: ParamText, Text: s} }

func Color(r, g, b float64) ParamValue {
	return ParamValue{Type: ParamColor, RGB: [3]float64{r, g, b}}
}

func (p ParamValue) AsFloat() float64 { return p.Num }
func (p ParamValue) AsInt() int       { return int(p.Num) }
func (p ParamValue) AsBool() bool     { return p.Flag }
func (p ParamValue) AsColor() [3]float64 {
	return p.RGB
}
func (p ParamValue) AsText() string { return p.Text }

func (p ParamValue) String() string {
	switch p.Type {
	case ParamFloat:
		return fmt.Sprintf("%.2f", p.Num)
	case ParamInt:
		return fmt.Sprintf("%d", int(p.Num))
	case ParamBool:
		if p.Flag {
			return "on"
		}
		return "off"
	case ParamColor:
		return fmt.Sprintf("#%02X%02X%02X",
			int(p.RGB[0]*255+0.5), int(p.RGB[1]*255+0.5), int(p.RGB[2]*255+0.5))
	case ParamText:
		return p.Text
	}
	return "?"
}

func (p ParamValue) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch p.Type {
	case ParamFloat:
		value = p.Num
	case ParamInt:
		value = int(p.Num)
	case ParamBool:
		value = p.Flag
	case ParamColor:
		value = p.RGB
	case ParamText:
		value = p.Text
	default:
		return nil, fmt.Errorf("unknown param type %q", p.Type)
	}
	return json.Marshal(struct {
		Type  ParamType   `json:"type"`
		Value interface{} `json:"value"`
	}{p.Type, value})
}

func (p *ParamValue) UnmarshalJSON(b []byte) error {
	var tag struct {
		Type ParamType `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case ParamFloat:
		var raw struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*p = Float(raw.Value)
	case ParamInt:
		var raw struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*p = Int(raw.Value)
	case ParamBool:
		var raw struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*p = Bool(raw.Value)
	case ParamColor:
		var raw struct {
			Value [3]float64 `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*p = ParamValue{Type: ParamColor, RGB: raw.Value}
	case ParamText:
		var raw struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*p = Text(raw.Value)
	default:
		return fmt.Errorf("unknown param type %q", tag.Type)
	}
	return nil
}

// FloatOr reads a float (or int) param with a fallback default.
func FloatOr(params map[string]ParamValue, key string, def float64) float64 {
	if p, ok := params[key]; ok && (p.Type == ParamFloat || p.Type == ParamInt) {
		return p.Num
	}
	return def
}

// IntOr reads an int param with a fallback default.
func IntOr(params map[string]ParamValue, key string, def int) int {
	if p, ok := params[key]; ok && p.Type == ParamInt {
		return int(p.Num)
	}
	return def
}

// BoolOr reads a bool param with a fallback default.
func BoolOr(params map[string]ParamValue, key string, def bool) bool {
	if p, ok := params[key]; ok && p.Type == ParamBool {
		return p.Flag
	}
	return def
}

// ColorOr reads a color param with a fallback default.
func ColorOr(params map[string]ParamValue, key string, def [3]float64) [3]float64 {
	if p, ok := params[key]; ok && p.Type == ParamColor {
		return p.RGB
	}
	return def
}

// TextOr reads a text param with a fallback default.
func TextOr(params map[string]ParamValue, key string, def string) string {
	if p, ok := params[key]; ok && p.Type == ParamText {
		return p.Text
	}
	return def
}

// ParamDef describes one editable parameter of an effect kind.
type ParamDef struct {
	Key     string
	Label   string
	Type    ParamType
	Min     float64
	Max     float64
	Step    float64
	Options []string
	Default ParamValue
}

// Schema returns the editable parameters for kind, in inspector order.
func Schema(kind EffectKind) []ParamDef {
	switch kind {
	case KindSolid:
		return []ParamDef{
			{Key: "color", Label: "Color", Type: ParamColor, Default: Color(1, 1, 1)},
		}
	case KindChase:
		return []ParamDef{
			{Key: "color", Label: "Color", Type: ParamColor, Default: Color(1, 1, 1)},
			{Key: "speed", Label: "Speed", Type: ParamFloat, Min: 0.1, Max: 20, Step: 0.1, Default: Float(1.0)},
			{Key: "tail_length", Label: "Tail Length", Type: ParamFloat, Min: 0.01, Max: 1, Step: 0.01, Default: Float(0.3)},
			{Key: "reverse", Label: "Reverse", Type: ParamBool, Default: Bool(false)},
		}
	case KindRainbow:
		return []ParamDef{
			{Key: "speed", Label: "Speed", Type: ParamFloat, Min: 0.1, Max: 20, Step: 0.1, Default: Float(1.0)},
			{Key: "spread", Label: "Spread", Type: ParamFloat, Min: 0.1, Max: 10, Step: 0.1, Default: Float(1.0)},
			{Key: "saturation", Label: "Saturation", Type: ParamFloat, Min: 0, Max: 1, Step: 0.01, Default: Float(1.0)},
			{Key: "brightness", Label: "Brightness", Type: ParamFloat, Min: 0, Max: 1, Step: 0.01, Default: Float(1.0)},
		}
	case KindStrobe:
		return []ParamDef{
			{Key: "color", Label: "Color", Type: ParamColor, Default: Color(1, 1, 1)},
			{Key: "rate", Label: "Rate", Type: ParamFloat, Min: 1, Max: 50, Step: 0.5, Default: Float(10.0)},
			{Key: "duty_cycle", Label: "Duty Cycle", Type: ParamFloat, Min: 0, Max: 1, Step: 0.01, Default: Float(0.5)},
		}
	case KindGradient:
		return []ParamDef{
			{Key: "from", Label: "From", Type: ParamColor, Default: Color(1, 0, 0)},
			{Key: "to", Label: "To", Type: ParamColor, Default: Color(0, 0, 1)},
			{Key: "offset", Label: "Offset", Type: ParamFloat, Min: -5, Max: 5, Step: 0.1, Default: Float(0.0)},
		}
	case KindTwinkle:
		return []ParamDef{
			{Key: "color", Label: "Color", Type: ParamColor, Default: Color(1, 1, 1)},
			{Key: "density", Label: "Density", Type: ParamFloat, Min: 0, Max: 1, Step: 0.01, Default: Float(0.3)},
			{Key: "speed", Label: "Speed", Type: ParamFloat, Min: 0.1, Max: 20, Step: 0.1, Default: Float(5.0)},
		}
	case KindFade:
		return []ParamDef{
			{Key: "from", Label: "From", Type: ParamColor, Default: Color(1, 1, 1)},
			{Key: "to", Label: "To", Type: ParamColor, Default: Color(0, 0, 0)},
		}
	case KindWipe:
		return []ParamDef{
			{Key: "color", Label: "Color", Type: ParamColor, Default: Color(1, 1, 1)},
			{Key: "direction", Label: "Direction", Type: ParamText, Options: []string{"horizontal", "vertical"}, Default: Text("horizontal")},
			{Key: "passes", Label: "Passes", Type: ParamInt, Min: 1, Max: 10, Step: 1, Default: Int(1)},
		}
	}
	return nil
}

// DefaultParams builds the default param map for kind.
func DefaultParams(kind EffectKind) map[string]ParamValue {
	defs := Schema(kind)
	if len(defs) == 0 {
		return nil
	}
	params := make(map[string]ParamValue, len(defs))
	for _, d := range defs {
		params[d.Key] = d.Default
	}
	return params
}
