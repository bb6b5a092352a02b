package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

const DefaultSpecDebounce = 200 * time.Millisecond

var specPresets = map[domain.Category][]string{
	domain.CategoryCPU:     {"socket", "cores", "threads", "baseClock", "boostClock", "tdp"},
	domain.CategoryGPU:     {"memory", "memoryType", "memoryBus", "coreClock"},
	domain.CategoryRAM:     {"capacity", "modules", "speed", "type", "timings"},
	domain.CategoryMain:    {"socket", "chipset", "formFactor", "memorySlots"},
	domain.CategoryPSU:     {"wattage", "modular", "efficiency"},
	domain.CategoryStorage: {"type", "capacity", "interface"},
	domain.CategoryCase:    {"formFactor", "fanSupport", "maxGpuLength"},
	domain.CategoryCooler:  {"type", "tdpSupported"},
}

var specAllowed = map[domain.Category][]string{
	domain.CategoryCPU:     {"socket", "cpuTdp", "cores", "threads", "baseClock", "boostClock"},
	domain.CategoryGPU:     {"memory", "memoryType", "memoryBus", "coreClock", "gpuLengthMm", "gpuTdp"},
	domain.CategoryRAM:     {"capacity", "modules", "speed", "type", "timings", "ramType"},
	domain.CategoryMain:    {"socket", "chipset", "formFactor", "memorySlots", "ramSlots", "ramMaxGb", "m2Slots", "sataPorts", "pcieSlots"},
	domain.CategoryPSU:     {"psuWatt", "modular", "efficiency"},
	domain.CategoryStorage: {"type", "capacity", "interface", "m2Slots"},
	domain.CategoryCase:    {"formFactor", "fanSupport", "maxGpuLength", "caseGpuMaxMm", "caseCoolerMaxMm"},
	domain.CategoryCooler:  {"type", "tdpSupported", "coolerHeightMm"},
}

// ParseSpecValue turns editor text into a spec value: true/false become
// booleans, numeric text a number, valid JSON its value, anything else stays
// the text as typed.
func ParseSpecValue(text string) domain.SpecValue {
	s := strings.TrimSpace(text)
	switch s {
	case "true":
		return domain.BoolValue(true)
	case "false":
		return domain.BoolValue(false)
	case "":
		return domain.StringValue(text)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return domain.NumberValue(n)
	}
	if json.Valid([]byte(s)) {
		var v domain.SpecValue
		if err := v.UnmarshalJSON([]byte(s)); err == nil {
			return v
		}
	}
	return domain.StringValue(text)
}

// FormatSpecValue is the inverse used to fill editor fields.
func FormatSpecValue(v domain.SpecValue) string {
	return v.String()
}

type SpecField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SpecObject is the editor's output: keys in field order, later duplicates
// overwriting the value but not the position.
type SpecObject []domain.SpecEntry

func (o SpecObject) JSON() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.Key)
		value, _ := e.Value.MarshalJSON()
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.String()
}

func (o SpecObject) Variant(category domain.Category) domain.SpecVariant {
	out := domain.NewSpecs(category)
	for _, e := range o {
		domain.Set(out, e.Key, e.Value)
	}
	return out
}

// SpecEditor edits a part's spec map as an ordered list of key/value text
// fields and reports the resulting object through onChange, debounced.
type SpecEditor struct {
	category domain.Category
	onChange func(SpecObject)
	debounce *Debouncer

	mu          sync.Mutex
	fields      []SpecField
	lastEmitted string
	closed      bool
}

// NewSpecEditor starts from initial. When initial is empty the category
// preset is applied, which counts as an edit.
func NewSpecEditor(category domain.Category, initial domain.SpecVariant, delay time.Duration, onChange func(SpecObject)) *SpecEditor {
	if delay <= 0 {
		delay = DefaultSpecDebounce
	}
	e := &SpecEditor{
		category: category,
		onChange: onChange,
		debounce: NewDebouncer(delay),
	}
	if initial != nil {
		for _, entry := range domain.Entries(initial) {
			e.fields = append(e.fields, SpecField{Key: entry.Key, Value: FormatSpecValue(entry.Value)})
		}
	}
	e.lastEmitted = e.objectLocked().JSON()
	if e.emptyLocked() {
		if _, ok := specPresets[category]; ok {
			e.fields = presetFields(category)
			e.changedLocked()
		}
	}
	return e
}

func presetFields(category domain.Category) []SpecField {
	keys := specPresets[category]
	out := make([]SpecField, 0, len(keys))
	for _, k := range keys {
		out = append(out, SpecField{Key: k})
	}
	return out
}

func (e *SpecEditor) emptyLocked() bool {
	for _, f := range e.fields {
		if f.Key != "" {
			return false
		}
	}
	return true
}

func (e *SpecEditor) Category() domain.Category { return e.category }

func (e *SpecEditor) Fields() []SpecField {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SpecField(nil), e.fields...)
}

// Object is the current object, whether or not it has been emitted.
func (e *SpecEditor) Object() SpecObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.objectLocked()
}

func (e *SpecEditor) ApplyPreset() {
	e.edit(func() error {
		e.fields = presetFields(e.category)
		return nil
	})
}

// AllowedKeys lists the category's allowed keys not yet in use.
func (e *SpecEditor) AllowedKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	used := make(map[string]bool, len(e.fields))
	for _, f := range e.fields {
		used[f.Key] = true
	}
	out := make([]string, 0)
	for _, k := range specAllowed[e.category] {
		if !used[k] {
			out = append(out, k)
		}
	}
	return out
}

func (e *SpecEditor) AddAllowed(key string) error {
	if key == "" {
		return nil
	}
	return e.edit(func() error {
		e.fields = append(e.fields, SpecField{Key: key})
		return nil
	})
}

func (e *SpecEditor) Add() {
	e.edit(func() error {
		e.fields = append(e.fields, SpecField{})
		return nil
	})
}

func (e *SpecEditor) Update(i int, key, value string) error {
	return e.edit(func() error {
		if i < 0 || i >= len(e.fields) {
			return fmt.Errorf("spec field %d out of range", i)
		}
		e.fields[i] = SpecField{Key: key, Value: value}
		return nil
	})
}

func (e *SpecEditor) Remove(i int) error {
	return e.edit(func() error {
		if i < 0 || i >= len(e.fields) {
			return fmt.Errorf("spec field %d out of range", i)
		}
		e.fields = append(e.fields[:i:i], e.fields[i+1:]...)
		return nil
	})
}

func (e *SpecEditor) Clear() {
	e.edit(func() error {
		e.fields = nil
		return nil
	})
}

// Flush emits a pending change immediately.
func (e *SpecEditor) Flush() bool {
	return e.debounce.Flush()
}

// Close drops a pending change; later edits are ignored.
func (e *SpecEditor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.debounce.Cancel()
}

func (e *SpecEditor) edit(apply func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if err := apply(); err != nil {
		return err
	}
	e.changedLocked()
	return nil
}

func (e *SpecEditor) changedLocked() {
	obj := e.objectLocked()
	serialized := obj.JSON()
	if serialized == e.lastEmitted {
		e.debounce.Cancel()
		return
	}
	e.debounce.Trigger(func() { e.emit(obj, serialized) })
}

func (e *SpecEditor) emit(obj SpecObject, serialized string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.lastEmitted = serialized
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange(obj)
	}
}

func (e *SpecEditor) objectLocked() SpecObject {
	obj := make(SpecObject, 0, len(e.fields))
	index := make(map[string]int, len(e.fields))
	for _, f := range e.fields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			continue
		}
		value := ParseSpecValue(f.Value)
		if i, ok := index[key]; ok {
			obj[i].Value = value
			continue
		}
		index[key] = len(obj)
		obj = append(obj, domain.SpecEntry{Key: key, Value: value})
	}
	return obj
}
