package application

import (
	"sync"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emissions struct {
	mu   sync.Mutex
	objs []SpecObject
}

func (e *emissions) record(obj SpecObject) {
	e.mu.Lock()
	e.objs = append(e.objs, obj)
	e.mu.Unlock()
}

func (e *emissions) snapshot() []SpecObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SpecObject(nil), e.objs...)
}

func TestParseSpecValue(t *testing.T) {
	assert.Equal(t, domain.BoolValue(true), ParseSpecValue(" true "))
	assert.Equal(t, domain.BoolValue(false), ParseSpecValue("false"))
	assert.Equal(t, domain.NumberValue(8), ParseSpecValue("8"))
	assert.Equal(t, domain.NumberValue(3.6), ParseSpecValue(" 3.6 "))
	assert.Equal(t, domain.StringValue("8GB"), ParseSpecValue("8GB"))
	assert.Equal(t, domain.StringValue("quoted"), ParseSpecValue(`"quoted"`))
	assert.Equal(t, domain.SpecJSON, ParseSpecValue(`{"l3":"32MB"}`).Kind)
	assert.Equal(t, domain.StringValue(""), ParseSpecValue(""))
	assert.Equal(t, domain.StringValue("Infinity"), ParseSpecValue("Infinity"))
}

func TestSpecEditorDebouncesBurstIntoOneEmission(t *testing.T) {
	initial, err := domain.ParseSpecs(domain.CategoryCPU, `{"socket":"AM5","cores":8}`)
	require.NoError(t, err)

	var got emissions
	editor := NewSpecEditor(domain.CategoryCPU, initial, 50*time.Millisecond, got.record)
	defer editor.Close()

	for i, v := range []string{"1", "12", "12.", "12.5", "16"} {
		require.NoError(t, editor.Update(1, "cores", v), "edit %d", i)
	}

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(120 * time.Millisecond)

	objs := got.snapshot()
	require.Len(t, objs, 1)
	assert.Equal(t, `{"socket":"AM5","cores":16}`, objs[0].JSON())
}

func TestSpecEditorSkipsUnchangedObject(t *testing.T) {
	initial, err := domain.ParseSpecs(domain.CategoryGPU, `{"memory":"12GB"}`)
	require.NoError(t, err)

	var got emissions
	editor := NewSpecEditor(domain.CategoryGPU, initial, 20*time.Millisecond, got.record)
	defer editor.Close()

	require.NoError(t, editor.Update(0, "memory", "16GB"))
	require.NoError(t, editor.Update(0, "memory", "12GB"))
	editor.Add()
	require.NoError(t, editor.Update(1, "   ", "ignored"))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, got.snapshot())
}

func TestSpecEditorAppliesPresetWhenEmpty(t *testing.T) {
	var got emissions
	editor := NewSpecEditor(domain.CategoryPSU, nil, time.Hour, got.record)
	defer editor.Close()

	keys := make([]string, 0)
	for _, f := range editor.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"wattage", "modular", "efficiency"}, keys)
	assert.Equal(t, []string{"psuWatt"}, editor.AllowedKeys())

	require.NoError(t, editor.AddAllowed("psuWatt"))
	require.NoError(t, editor.Update(0, "wattage", "750"))
	require.True(t, editor.Flush())

	objs := got.snapshot()
	require.Len(t, objs, 1)
	assert.Equal(t, `{"wattage":750,"modular":"","efficiency":"","psuWatt":""}`, objs[0].JSON())
	assert.Empty(t, editor.AllowedKeys())

	psu, ok := objs[0].Variant(domain.CategoryPSU).(*domain.PSUSpecs)
	require.True(t, ok)
	require.NotNil(t, psu.Wattage)
	assert.Equal(t, 750.0, *psu.Wattage)
}

func TestSpecEditorRemoveClearAndClose(t *testing.T) {
	initial, err := domain.ParseSpecs(domain.CategoryRAM, `{"capacity":"32GB","speed":"6000"}`)
	require.NoError(t, err)

	var got emissions
	editor := NewSpecEditor(domain.CategoryRAM, initial, time.Hour, got.record)

	require.NoError(t, editor.Remove(0))
	require.Error(t, editor.Remove(5))
	assert.Len(t, editor.Fields(), 1)

	editor.Clear()
	assert.Empty(t, editor.Object())
	editor.Close()
	assert.False(t, editor.Flush())
	assert.Empty(t, got.snapshot())
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	d := NewDebouncer(time.Hour)
	calls := 0
	d.Trigger(func() { calls++ })
	d.Trigger(func() { calls += 10 })
	assert.True(t, d.Pending())
	assert.True(t, d.Flush())
	assert.Equal(t, 10, calls)
	assert.False(t, d.Flush())

	d.Trigger(func() { calls++ })
	d.Cancel()
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
	assert.Equal(t, 10, calls)
}
