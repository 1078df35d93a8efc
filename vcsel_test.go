package vl53l0x

import (
	"errors"
	"testing"
)

func TestSetVcselPulsePeriodRejectsInvalid(t *testing.T) {

	cases := []struct {
		name   string
		step   VcselPeriodType
		period uint8
	}{
		{"pre-range odd", VcselPeriodPreRange, 13},
		{"pre-range low", VcselPeriodPreRange, 10},
		{"pre-range high", VcselPeriodPreRange, 20},
		{"final range odd", VcselPeriodFinalRange, 9},
		{"final range high", VcselPeriodFinalRange, 16},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bus := newFakeDevice()
			v := newTestSensor(t, bus, &fakeClock{})

			err := v.SetVcselPulsePeriod(c.step, c.period)

			if !errors.Is(err, ErrInvalidPeriod) {
				t.Fatalf("err = %v, want ErrInvalidPeriod", err)
			}

			if len(bus.writes) != 0 {
				t.Fatalf("expected no register writes, got %d", len(bus.writes))
			}
		})
	}
}

func TestSetVcselPulsePeriodPreRange(t *testing.T) {

	bus := newFakeDevice()
	v := newTestSensor(t, bus, &fakeClock{})

	// capture the implied budget so the reapplication has a target
	if _, err := v.GetMeasurementTimingBudget(); err != nil {
		t.Fatalf("GetMeasurementTimingBudget() err=%v", err)
	}

	oldEnables, err := v.getSequenceStepEnables()

	if err != nil {
		t.Fatalf("getSequenceStepEnables() err=%v", err)
	}

	oldTimeouts, err := v.getSequenceStepTimeouts(oldEnables)

	if err != nil {
		t.Fatalf("getSequenceStepTimeouts() err=%v", err)
	}

	if err := v.SetVcselPulsePeriod(VcselPeriodPreRange, 12); err != nil {
		t.Fatalf("SetVcselPulsePeriod(PreRange, 12) err=%v", err)
	}

	got, err := v.GetVcselPulsePeriod(VcselPeriodPreRange)

	if err != nil {
		t.Fatalf("GetVcselPulsePeriod() err=%v", err)
	}

	if got != 12 {
		t.Fatalf("pre-range period = %d, want 12", got)
	}

	if bus.regs[PRE_RANGE_CONFIG_VALID_PHASE_HIGH] != 0x18 {
		t.Errorf("phase high = 0x%02X, want 0x18",
			bus.regs[PRE_RANGE_CONFIG_VALID_PHASE_HIGH])
	}

	if bus.regs[PRE_RANGE_CONFIG_VALID_PHASE_LOW] != 0x08 {
		t.Errorf("phase low = 0x%02X, want 0x08",
			bus.regs[PRE_RANGE_CONFIG_VALID_PHASE_LOW])
	}

	// the pre-range timeout keeps its duration in microseconds at the new
	// period, within conversion rounding
	newPreMclks := decodeTimeout(bus.reg16(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI))
	newPreUs := timeoutMclksToMicroseconds(newPreMclks, 12)

	diff := int64(newPreUs) - int64(oldTimeouts.preRangeUs)

	if diff < -100 || diff > 100 {
		t.Errorf("pre-range timeout drifted from %d us to %d us",
			oldTimeouts.preRangeUs, newPreUs)
	}

	// MSRC runs at the pre-range period so its timeout moved too
	if len(bus.writesTo(MSRC_CONFIG_TIMEOUT_MACROP)) == 0 {
		t.Errorf("MSRC timeout not rewritten on pre-range period change")
	}
}

func TestSetVcselPulsePeriodFinalRange(t *testing.T) {

	bus := newFakeDevice()
	v := newTestSensor(t, bus, &fakeClock{})

	if _, err := v.GetMeasurementTimingBudget(); err != nil {
		t.Fatalf("GetMeasurementTimingBudget() err=%v", err)
	}

	oldEnables, err := v.getSequenceStepEnables()

	if err != nil {
		t.Fatalf("getSequenceStepEnables() err=%v", err)
	}

	_, err = v.getSequenceStepTimeouts(oldEnables)

	if err != nil {
		t.Fatalf("getSequenceStepTimeouts() err=%v", err)
	}

	if err := v.SetVcselPulsePeriod(VcselPeriodFinalRange, 8); err != nil {
		t.Fatalf("SetVcselPulsePeriod(FinalRange, 8) err=%v", err)
	}

	got, err := v.GetVcselPulsePeriod(VcselPeriodFinalRange)

	if err != nil {
		t.Fatalf("GetVcselPulsePeriod() err=%v", err)
	}

	if got != 8 {
		t.Fatalf("final range period = %d, want 8", got)
	}

	if bus.regs[FINAL_RANGE_CONFIG_VALID_PHASE_HIGH] != 0x10 {
		t.Errorf("phase high = 0x%02X, want 0x10",
			bus.regs[FINAL_RANGE_CONFIG_VALID_PHASE_HIGH])
	}

	if bus.regs[GLOBAL_CONFIG_VCSEL_WIDTH] != 0x02 {
		t.Errorf("vcsel width = 0x%02X, want 0x02",
			bus.regs[GLOBAL_CONFIG_VCSEL_WIDTH])
	}

	// phasecal timeout then the banked phasecal limit hit the same
	// register address; the write log keeps them apart
	writes := bus.writesTo(ALGO_PHASECAL_CONFIG_TIMEOUT)

	if len(writes) < 2 || writes[0][0] != 0x0C || writes[1][0] != 0x30 {
		t.Errorf("phasecal writes = %v, want 0x0C then 0x30", writes)
	}
}

func TestSetFinalRangePeriodPreservesPreRangeSum(t *testing.T) {

	bus := newFakeDevice()
	v := newTestSensor(t, bus, &fakeClock{})

	if _, err := v.GetMeasurementTimingBudget(); err != nil {
		t.Fatalf("GetMeasurementTimingBudget() err=%v", err)
	}

	if err := v.SetVcselPulsePeriod(VcselPeriodFinalRange, 14); err != nil {
		t.Fatalf("SetVcselPulsePeriod(FinalRange, 14) err=%v", err)
	}

	// with pre-range enabled the stored final range timeout includes the
	// pre-range mclks, so the net step timeout must decode above them
	enables, err := v.getSequenceStepEnables()

	if err != nil {
		t.Fatalf("getSequenceStepEnables() err=%v", err)
	}

	if !enables.preRange {
		t.Fatalf("pre-range unexpectedly disabled")
	}

	stored := decodeTimeout(bus.reg16(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI))
	pre := decodeTimeout(bus.reg16(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI))

	if stored <= pre {
		t.Fatalf("stored final range timeout %d does not include pre-range %d",
			stored, pre)
	}
}
