package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type SpecKind int

const (
	SpecString SpecKind = iota
	SpecNumber
	SpecBool
	SpecJSON
)

// SpecValue is one loosely typed spec entry: a string, number, bool or any
// other JSON value kept verbatim.
type SpecValue struct {
	Kind SpecKind
	Str  string
	Num  float64
	Bool bool
	Raw  json.RawMessage
}

func StringValue(s string) SpecValue { return SpecValue{Kind: SpecString, Str: s} }
func NumberValue(n float64) SpecValue { return SpecValue{Kind: SpecNumber, Num: n} }
func BoolValue(b bool) SpecValue { return SpecValue{Kind: SpecBool, Bool: b} }
func RawValue(raw []byte) SpecValue { return SpecValue{Kind: SpecJSON, Raw: append(json.RawMessage(nil), raw...)} }

func (v SpecValue) String() string {
	switch v.Kind {
	case SpecNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case SpecBool:
		return strconv.FormatBool(v.Bool)
	case SpecJSON:
		return string(v.Raw)
	default:
		return v.Str
	}
}

func (v SpecValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case SpecNumber:
		return json.Marshal(v.Num)
	case SpecBool:
		return json.Marshal(v.Bool)
	case SpecJSON:
		if len(v.Raw) == 0 {
			return []byte("null"), nil
		}
		return v.Raw, nil
	default:
		return json.Marshal(v.Str)
	}
}

func (v *SpecValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty spec value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
	default:
		if !json.Valid(trimmed) {
			return fmt.Errorf("invalid spec value %q", string(trimmed))
		}
		*v = RawValue(trimmed)
	}
	return nil
}

type SpecEntry struct {
	Key   string
	Value SpecValue
}

// SpecVariant is the category-specific view of a part's spec map. Known keys
// are typed fields; anything else lands in Extra.
type SpecVariant interface {
	Category() Category
	bindings() []specBinding
	extras() map[string]SpecValue
	setExtra(key string, value SpecValue)
}

type specBinding struct {
	key  string
	text *string
	num  **float64
}

func (b specBinding) value() (SpecValue, bool) {
	if b.text != nil && *b.text != "" {
		return StringValue(*b.text), true
	}
	if b.num != nil && *b.num != nil {
		return NumberValue(**b.num), true
	}
	return SpecValue{}, false
}

func (b specBinding) clear() {
	if b.text != nil {
		*b.text = ""
	}
	if b.num != nil {
		*b.num = nil
	}
}

func (b specBinding) assign(value SpecValue) bool {
	switch {
	case b.text != nil && value.Kind == SpecString && value.Str != "":
		*b.text = value.Str
		return true
	case b.num != nil && value.Kind == SpecNumber:
		n := value.Num
		*b.num = &n
		return true
	}
	return false
}

type SpecExtras struct {
	Extra map[string]SpecValue `json:"-"`
}

func (e *SpecExtras) extras() map[string]SpecValue { return e.Extra }

func (e *SpecExtras) setExtra(key string, value SpecValue) {
	if e.Extra == nil {
		e.Extra = make(map[string]SpecValue)
	}
	e.Extra[key] = value
}

type CPUSpecs struct {
	Socket     string
	Cores      *float64
	Threads    *float64
	BaseClock  string
	BoostClock string
	TDP        *float64
	CPUTDP     *float64
	SpecExtras
}

func (*CPUSpecs) Category() Category { return CategoryCPU }
func (s *CPUSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "socket", text: &s.Socket},
		{key: "cores", num: &s.Cores},
		{key: "threads", num: &s.Threads},
		{key: "baseClock", text: &s.BaseClock},
		{key: "boostClock", text: &s.BoostClock},
		{key: "tdp", num: &s.TDP},
		{key: "cpuTdp", num: &s.CPUTDP},
	}
}

type GPUSpecs struct {
	Memory      string
	MemoryType  string
	MemoryBus   string
	CoreClock   string
	GPULengthMM *float64
	GPUTDP      *float64
	SpecExtras
}

func (*GPUSpecs) Category() Category { return CategoryGPU }
func (s *GPUSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "memory", text: &s.Memory},
		{key: "memoryType", text: &s.MemoryType},
		{key: "memoryBus", text: &s.MemoryBus},
		{key: "coreClock", text: &s.CoreClock},
		{key: "gpuLengthMm", num: &s.GPULengthMM},
		{key: "gpuTdp", num: &s.GPUTDP},
	}
}

type RAMSpecs struct {
	Capacity string
	Modules  string
	Speed    string
	Type     string
	Timings  string
	RAMType  string
	SpecExtras
}

func (*RAMSpecs) Category() Category { return CategoryRAM }
func (s *RAMSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "capacity", text: &s.Capacity},
		{key: "modules", text: &s.Modules},
		{key: "speed", text: &s.Speed},
		{key: "type", text: &s.Type},
		{key: "timings", text: &s.Timings},
		{key: "ramType", text: &s.RAMType},
	}
}

type MainboardSpecs struct {
	Socket      string
	Chipset     string
	FormFactor  string
	MemorySlots *float64
	RAMSlots    *float64
	RAMMaxGB    *float64
	M2Slots     *float64
	SATAPorts   *float64
	PCIeSlots   *float64
	SpecExtras
}

func (*MainboardSpecs) Category() Category { return CategoryMain }
func (s *MainboardSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "socket", text: &s.Socket},
		{key: "chipset", text: &s.Chipset},
		{key: "formFactor", text: &s.FormFactor},
		{key: "memorySlots", num: &s.MemorySlots},
		{key: "ramSlots", num: &s.RAMSlots},
		{key: "ramMaxGb", num: &s.RAMMaxGB},
		{key: "m2Slots", num: &s.M2Slots},
		{key: "sataPorts", num: &s.SATAPorts},
		{key: "pcieSlots", num: &s.PCIeSlots},
	}
}

type PSUSpecs struct {
	Wattage    *float64
	PSUWatt    *float64
	Modular    string
	Efficiency string
	SpecExtras
}

func (*PSUSpecs) Category() Category { return CategoryPSU }
func (s *PSUSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "wattage", num: &s.Wattage},
		{key: "psuWatt", num: &s.PSUWatt},
		{key: "modular", text: &s.Modular},
		{key: "efficiency", text: &s.Efficiency},
	}
}

type StorageSpecs struct {
	Type      string
	Capacity  string
	Interface string
	M2Slots   *float64
	SpecExtras
}

func (*StorageSpecs) Category() Category { return CategoryStorage }
func (s *StorageSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "type", text: &s.Type},
		{key: "capacity", text: &s.Capacity},
		{key: "interface", text: &s.Interface},
		{key: "m2Slots", num: &s.M2Slots},
	}
}

type CaseSpecs struct {
	FormFactor      string
	FanSupport      string
	MaxGPULength    string
	CaseGPUMaxMM    *float64
	CaseCoolerMaxMM *float64
	SpecExtras
}

func (*CaseSpecs) Category() Category { return CategoryCase }
func (s *CaseSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "formFactor", text: &s.FormFactor},
		{key: "fanSupport", text: &s.FanSupport},
		{key: "maxGpuLength", text: &s.MaxGPULength},
		{key: "caseGpuMaxMm", num: &s.CaseGPUMaxMM},
		{key: "caseCoolerMaxMm", num: &s.CaseCoolerMaxMM},
	}
}

type CoolerSpecs struct {
	Type           string
	TDPSupported   string
	CoolerHeightMM *float64
	SpecExtras
}

func (*CoolerSpecs) Category() Category { return CategoryCooler }
func (s *CoolerSpecs) bindings() []specBinding {
	return []specBinding{
		{key: "type", text: &s.Type},
		{key: "tdpSupported", text: &s.TDPSupported},
		{key: "coolerHeightMm", num: &s.CoolerHeightMM},
	}
}

// GenericSpecs holds specs for a category this client does not know.
type GenericSpecs struct {
	Cat Category
	SpecExtras
}

func (s *GenericSpecs) Category() Category { return s.Cat }
func (*GenericSpecs) bindings() []specBinding { return nil }

func NewSpecs(category Category) SpecVariant {
	switch category {
	case CategoryCPU:
		return &CPUSpecs{}
	case CategoryGPU:
		return &GPUSpecs{}
	case CategoryRAM:
		return &RAMSpecs{}
	case CategoryMain:
		return &MainboardSpecs{}
	case CategoryPSU:
		return &PSUSpecs{}
	case CategoryStorage:
		return &StorageSpecs{}
	case CategoryCase:
		return &CaseSpecs{}
	case CategoryCooler:
		return &CoolerSpecs{}
	default:
		return &GenericSpecs{Cat: category}
	}
}

// KnownSpecKeys lists the typed keys of a category in display order.
func KnownSpecKeys(category Category) []string {
	bindings := NewSpecs(category).bindings()
	keys := make([]string, 0, len(bindings))
	for _, b := range bindings {
		keys = append(keys, b.key)
	}
	return keys
}

// ParseSpecs decodes a specJson object. A blank input yields an empty variant;
// a malformed one yields an empty variant and the decode error.
func ParseSpecs(category Category, raw string) (SpecVariant, error) {
	out := NewSpecs(category)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	var values map[string]SpecValue
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return out, fmt.Errorf("decode specs: %w", err)
	}
	for key, value := range values {
		Set(out, key, value)
	}
	return out, nil
}

func SpecsFromMap(category Category, values map[string]SpecValue) SpecVariant {
	out := NewSpecs(category)
	for key, value := range values {
		Set(out, key, value)
	}
	return out
}

// Set stores value under key, in the typed field when the kinds match.
func Set(v SpecVariant, key string, value SpecValue) {
	for _, b := range v.bindings() {
		if b.key != key {
			continue
		}
		if b.assign(value) {
			delete(v.extras(), key)
			return
		}
		b.clear()
	}
	v.setExtra(key, value)
}

func Get(v SpecVariant, key string) (SpecValue, bool) {
	for _, b := range v.bindings() {
		if b.key == key {
			if value, ok := b.value(); ok {
				return value, true
			}
		}
	}
	value, ok := v.extras()[key]
	return value, ok
}

// Entries returns every entry: typed keys in schema order, then extra keys
// sorted by name.
func Entries(v SpecVariant) []SpecEntry {
	extra := v.extras()
	seen := make(map[string]struct{}, len(extra))
	out := make([]SpecEntry, 0, len(extra)+8)
	for _, b := range v.bindings() {
		if value, ok := b.value(); ok {
			out = append(out, SpecEntry{Key: b.key, Value: value})
			seen[b.key] = struct{}{}
			continue
		}
		if value, ok := extra[b.key]; ok {
			out = append(out, SpecEntry{Key: b.key, Value: value})
			seen[b.key] = struct{}{}
		}
	}
	rest := make([]string, 0, len(extra))
	for key := range extra {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		out = append(out, SpecEntry{Key: key, Value: extra[key]})
	}
	return out
}

// MarshalSpecs encodes the variant back to a specJson object, keeping the
// order of Entries.
func MarshalSpecs(v SpecVariant) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range Entries(v) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return "", err
		}
		value, err := entry.Value.MarshalJSON()
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}
