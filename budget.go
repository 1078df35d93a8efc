package vl53l0x

// Fixed per-step overheads in microseconds. The start overhead is measured
// differently in each direction: 1320 when programming a budget, 1910 when
// reading one back. The two constants are deliberately not unified; the
// device-validated behavior depends on the asymmetry.
const (
	startOverheadSet = 1320
	startOverheadGet = 1910

	endOverhead        = 960
	msrcOverhead       = 660
	tccOverhead        = 590
	dssOverhead        = 690
	preRangeOverhead   = 660
	finalRangeOverhead = 550

	// MinTimingBudgetUs is the smallest measurement timing budget the
	// device accepts.
	MinTimingBudgetUs uint32 = 20000
)

// SetMeasurementTimingBudget sets the measurement timing budget in
// microseconds, the time allowed for one measurement. The budget is split
// among the enabled sequence steps: fixed overheads and the current
// TCC/DSS/MSRC/pre-range costs are subtracted and whatever remains becomes
// the final range timeout. A longer budget gives more accurate
// measurements; increasing it by a factor of N decreases the measurement
// standard deviation by a factor of sqrt(N). The default after Init is
// about 33 ms.
// based on VL53L0X_set_measurement_timing_budget_micro_seconds()
func (v *VL53L0X) SetMeasurementTimingBudget(budgetUs uint32) error {

	if budgetUs < MinTimingBudgetUs {
		return ErrBudgetTooSmall
	}

	enables, err := v.getSequenceStepEnables()

	if err != nil {
		return err
	}

	timeouts, err := v.getSequenceStepTimeouts(enables)

	if err != nil {
		return err
	}

	usedBudgetUs := uint32(startOverheadSet + endOverhead)

	if enables.tcc {
		usedBudgetUs += timeouts.msrcDssTccUs + tccOverhead
	}

	if enables.dss {
		// DSS runs twice per measurement
		usedBudgetUs += 2 * (timeouts.msrcDssTccUs + dssOverhead)
	} else if enables.msrc {
		usedBudgetUs += timeouts.msrcDssTccUs + msrcOverhead
	}

	if enables.preRange {
		usedBudgetUs += timeouts.preRangeUs + preRangeOverhead
	}

	if enables.finalRange {
		usedBudgetUs += finalRangeOverhead

		// The final range timeout is whatever the budget leaves after
		// every other enabled step; no room left is an error.
		if usedBudgetUs > budgetUs {
			return ErrTimeoutTooLarge
		}

		finalRangeTimeoutUs := budgetUs - usedBudgetUs

		// The device stores the final range timeout with the pre-range
		// timeout added on. The two run at different VCSEL periods, so the
		// addition happens in MCLKs.
		finalRangeTimeoutMclks := timeoutMicrosecondsToMclks(
			finalRangeTimeoutUs, timeouts.finalRangeVcselPeriodPclks)

		if enables.preRange {
			finalRangeTimeoutMclks += uint32(timeouts.preRangeMclks)
		}

		err := v.writeReg16Bit(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI,
			encodeTimeout(uint16(finalRangeTimeoutMclks)))

		if err != nil {
			return err
		}

		// store for reapplication after VCSEL period changes
		v.measurementTimingBudgetUs = budgetUs
	}

	return nil
}

// GetMeasurementTimingBudget returns the measurement timing budget in
// microseconds implied by the device's current step configuration, and
// refreshes the cached budget as a side effect.
// based on VL53L0X_get_measurement_timing_budget_micro_seconds()
func (v *VL53L0X) GetMeasurementTimingBudget() (uint32, error) {

	enables, err := v.getSequenceStepEnables()

	if err != nil {
		return 0, err
	}

	timeouts, err := v.getSequenceStepTimeouts(enables)

	if err != nil {
		return 0, err
	}

	// start and end overheads are always present
	budgetUs := uint32(startOverheadGet + endOverhead)

	if enables.tcc {
		budgetUs += timeouts.msrcDssTccUs + tccOverhead
	}

	if enables.dss {
		budgetUs += 2 * (timeouts.msrcDssTccUs + dssOverhead)
	} else if enables.msrc {
		budgetUs += timeouts.msrcDssTccUs + msrcOverhead
	}

	if enables.preRange {
		budgetUs += timeouts.preRangeUs + preRangeOverhead
	}

	if enables.finalRange {
		budgetUs += timeouts.finalRangeUs + finalRangeOverhead
	}

	v.measurementTimingBudgetUs = budgetUs

	return budgetUs, nil
}
