package vl53l0x

import "fmt"

// VcselPeriodType selects which ranging step's VCSEL pulse period an
// operation applies to.
type VcselPeriodType int

const (
	// VcselPeriodPreRange is the pre-range step period (12 to 18 PCLKs)
	VcselPeriodPreRange VcselPeriodType = iota
	// VcselPeriodFinalRange is the final range step period (8 to 14 PCLKs)
	VcselPeriodFinalRange
)

// preRangePhaseHigh maps each valid pre-range period to its phase check
// limit. Measured vendor constants, not derived.
var preRangePhaseHigh = map[uint8]uint8{
	12: 0x18,
	14: 0x30,
	16: 0x40,
	18: 0x50,
}

// finalRangePeriodConfig carries the measured vendor settings applied with
// each valid final range period.
type finalRangePeriodConfig struct {
	validPhaseHigh  uint8
	vcselWidth      uint8
	phasecalTimeout uint8
	phasecalLim     uint8
}

var finalRangePeriodConfigs = map[uint8]finalRangePeriodConfig{
	8:  {validPhaseHigh: 0x10, vcselWidth: 0x02, phasecalTimeout: 0x0C, phasecalLim: 0x30},
	10: {validPhaseHigh: 0x28, vcselWidth: 0x03, phasecalTimeout: 0x09, phasecalLim: 0x20},
	12: {validPhaseHigh: 0x38, vcselWidth: 0x03, phasecalTimeout: 0x08, phasecalLim: 0x20},
	14: {validPhaseHigh: 0x48, vcselWidth: 0x03, phasecalTimeout: 0x07, phasecalLim: 0x20},
}

// SetVcselPulsePeriod sets the VCSEL pulse period for the given step to the
// given value in PCLKs. Longer periods increase the potential range of the
// sensor. The request is validated before any bus traffic; only the even
// values 12/14/16/18 (pre-range) and 8/10/12/14 (final range) are accepted.
//
// Changing a period rescales the step's timeout so its duration in
// microseconds is preserved, recomputes the MSRC timeout when the pre-range
// period changes (MSRC runs at the pre-range period), reapplies the cached
// timing budget, and performs a phase recalibration.
// based on VL53L0X_set_vcsel_pulse_period()
func (v *VL53L0X) SetVcselPulsePeriod(periodType VcselPeriodType, periodPclks uint8) error {

	switch periodType {
	case VcselPeriodPreRange:
		if _, ok := preRangePhaseHigh[periodPclks]; !ok {
			return ErrInvalidPeriod
		}
	case VcselPeriodFinalRange:
		if _, ok := finalRangePeriodConfigs[periodPclks]; !ok {
			return ErrInvalidPeriod
		}
	default:
		return fmt.Errorf("unrecognized vcsel period type")
	}

	// Read the current enables and timeouts before anything changes; the
	// timeouts in microseconds are measured at the old period and get
	// written back in MCLKs at the new one.
	enables, err := v.getSequenceStepEnables()

	if err != nil {
		return err
	}

	timeouts, err := v.getSequenceStepTimeouts(enables)

	if err != nil {
		return err
	}

	if periodType == VcselPeriodPreRange {
		err = v.setPreRangePeriod(periodPclks, timeouts)
	} else {
		err = v.setFinalRangePeriod(periodPclks, enables, timeouts)
	}

	if err != nil {
		return err
	}

	// The timing budget depends on the step timeouts just rewritten, so it
	// must be reapplied.
	budgetErr := v.SetMeasurementTimingBudget(v.measurementTimingBudgetUs)

	// A phase recalibration is needed after any period change, whether or
	// not the budget reapplication succeeded.
	calErr := v.phaseCalibration()

	if budgetErr != nil {
		return budgetErr
	}

	return calErr
}

// setPreRangePeriod applies the phase limits and new period for the
// pre-range step, then rescales the pre-range and MSRC timeouts.
func (v *VL53L0X) setPreRangePeriod(periodPclks uint8, timeouts sequenceStepTimeouts) error {

	if err := v.writeReg(PRE_RANGE_CONFIG_VALID_PHASE_HIGH, preRangePhaseHigh[periodPclks]); err != nil {
		return err
	}

	if err := v.writeReg(PRE_RANGE_CONFIG_VALID_PHASE_LOW, 0x08); err != nil {
		return err
	}

	// apply new VCSEL period
	if err := v.writeReg(PRE_RANGE_CONFIG_VCSEL_PERIOD, encodeVcselPeriod(periodPclks)); err != nil {
		return err
	}

	newPreRangeTimeoutMclks := timeoutMicrosecondsToMclks(timeouts.preRangeUs, periodPclks)

	err := v.writeReg16Bit(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI,
		encodeTimeout(uint16(newPreRangeTimeoutMclks)))

	if err != nil {
		return err
	}

	// MSRC shares the pre-range VCSEL period, so its timeout moves too. Its
	// register holds timeout-1 clamped to one byte.
	newMsrcTimeoutMclks := timeoutMicrosecondsToMclks(timeouts.msrcDssTccUs, periodPclks)

	msrcReg := uint8(newMsrcTimeoutMclks - 1)

	if newMsrcTimeoutMclks > 256 {
		msrcReg = 255
	}

	return v.writeReg(MSRC_CONFIG_TIMEOUT_MACROP, msrcReg)
}

// setFinalRangePeriod applies the vendor settings table and new period for
// the final range step, then rewrites the final range timeout with the
// pre-range contribution re-added.
func (v *VL53L0X) setFinalRangePeriod(periodPclks uint8, enables sequenceStepEnables, timeouts sequenceStepTimeouts) error {

	cfg := finalRangePeriodConfigs[periodPclks]

	script := []regVal{
		{FINAL_RANGE_CONFIG_VALID_PHASE_HIGH, cfg.validPhaseHigh},
		{FINAL_RANGE_CONFIG_VALID_PHASE_LOW, 0x08},
		{GLOBAL_CONFIG_VCSEL_WIDTH, cfg.vcselWidth},
		{ALGO_PHASECAL_CONFIG_TIMEOUT, cfg.phasecalTimeout},
	}

	if err := v.writeScript(script); err != nil {
		return err
	}

	err := v.onBank(0x01, func() error {
		return v.writeReg(ALGO_PHASECAL_LIM, cfg.phasecalLim)
	})

	if err != nil {
		return err
	}

	// apply new VCSEL period
	if err := v.writeReg(FINAL_RANGE_CONFIG_VCSEL_PERIOD, encodeVcselPeriod(periodPclks)); err != nil {
		return err
	}

	newFinalRangeTimeoutMclks := timeoutMicrosecondsToMclks(timeouts.finalRangeUs, periodPclks)

	if enables.preRange {
		newFinalRangeTimeoutMclks += uint32(timeouts.preRangeMclks)
	}

	return v.writeReg16Bit(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI,
		encodeTimeout(uint16(newFinalRangeTimeoutMclks)))
}

// GetVcselPulsePeriod returns the VCSEL pulse period in PCLKs for the given
// step
// based on VL53L0X_get_vcsel_pulse_period()
func (v *VL53L0X) GetVcselPulsePeriod(periodType VcselPeriodType) (uint8, error) {

	var reg uint8

	switch periodType {
	case VcselPeriodPreRange:
		reg = PRE_RANGE_CONFIG_VCSEL_PERIOD
	case VcselPeriodFinalRange:
		reg = FINAL_RANGE_CONFIG_VCSEL_PERIOD
	default:
		return 0, fmt.Errorf("unrecognized vcsel period type")
	}

	val, err := v.readReg(reg)

	if err != nil {
		return 0, err
	}

	return decodeVcselPeriod(val), nil
}
