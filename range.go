package vl53l0x

import "time"

// RangeSentinel is returned by the range read functions when the start-bit
// poll times out. It looks like a valid reading; disambiguate via the
// returned error or TimeoutOccurred.
const RangeSentinel uint16 = 65535

// restoreStopVariable rewrites the stop variable captured at Init. The
// sensor needs it back before every measurement start.
func (v *VL53L0X) restoreStopVariable() error {
	return v.withSequenceAccess(func() error {
		return v.writeReg(0x91, v.stopVariable)
	})
}

// StartContinuous begins continuous ranging measurements. With periodMs of
// 0 the sensor runs back-to-back, measuring as often as possible; otherwise
// continuous timed mode is used with the given inter-measurement period in
// milliseconds.
// based on VL53L0X_StartMeasurement()
func (v *VL53L0X) StartContinuous(periodMs uint32) error {

	v.log.Print("Start continuous mode")

	if err := v.restoreStopVariable(); err != nil {
		return err
	}

	if periodMs != 0 {
		// continuous timed mode: the period register counts in oscillator
		// calibration units when the device reports a calibration value
		oscCalibrateVal, err := v.readReg16Bit(OSC_CALIBRATE_VAL)

		if err != nil {
			return err
		}

		if oscCalibrateVal != 0 {
			periodMs *= uint32(oscCalibrateVal)
		}

		if err := v.writeReg32Bit(SYSTEM_INTERMEASUREMENT_PERIOD, periodMs); err != nil {
			return err
		}

		// 0x04 is SYSRANGE mode timed
		return v.writeReg(SYSRANGE_START, 0x04)
	}

	// 0x02 is SYSRANGE mode back-to-back
	return v.writeReg(SYSRANGE_START, 0x02)
}

// stopContinuousScript clears the stop-variable shadow after dropping back
// to single-shot mode.
var stopContinuousScript = []regVal{
	{INTERNAL_BANK_SELECT, 0x01},
	{0x00, 0x00},
	{0x91, 0x00},
	{0x00, 0x01},
	{INTERNAL_BANK_SELECT, 0x00},
}

// StopContinuous stops continuous ranging measurements.
// based on VL53L0X_StopMeasurement()
func (v *VL53L0X) StopContinuous() error {

	v.log.Print("Stop continuous mode")

	// 0x01 is SYSRANGE mode single-shot
	if err := v.writeReg(SYSRANGE_START, 0x01); err != nil {
		return err
	}

	return v.writeScript(stopContinuousScript)
}

// ReadRangeContinuousMillimeters returns a range reading in millimeters
// when continuous mode is active. It does not wait for a new sample;
// continuous mode (or the single-shot start poll) guarantees one is
// present. Readings assume the default linearity corrective gain of 1000
// and fractional ranging disabled.
func (v *VL53L0X) ReadRangeContinuousMillimeters() (uint16, error) {

	rangeMm, err := v.readReg16Bit(RESULT_RANGE_STATUS + 10)

	if err != nil {
		return 0, err
	}

	if err := v.writeReg(SYSTEM_INTERRUPT_CLEAR, 0x01); err != nil {
		return 0, err
	}

	return rangeMm, nil
}

// ReadRangeSingleMillimeters performs a single-shot range measurement and
// returns the reading in millimeters. If the measurement start bit does not
// clear before the deadline the sticky timeout flag is set and the sentinel
// 65535 is returned along with ErrRangeTimedOut; the caller may retry.
// based on VL53L0X_PerformSingleRangingMeasurement()
func (v *VL53L0X) ReadRangeSingleMillimeters() (uint16, error) {

	if err := v.restoreStopVariable(); err != nil {
		return 0, err
	}

	if err := v.writeReg(SYSRANGE_START, 0x01); err != nil {
		return 0, err
	}

	// wait until the start bit has been cleared
	v.startTimeout()

	for {
		start, err := v.readReg(SYSRANGE_START)

		if err != nil {
			return 0, err
		}

		if start&0x01 == 0 {
			break
		}

		if v.checkTimeoutExpired() {
			v.didTimeout = true
			return RangeSentinel, ErrRangeTimedOut
		}

		time.Sleep(1 * time.Millisecond)
	}

	return v.ReadRangeContinuousMillimeters()
}
