package vl53l0x

import "time"

// performSingleRefCalibration runs one reference calibration pass: start the
// calibration with the given mode byte (0x40 for VHV, 0x00 for phase), poll
// the interrupt status until it fires or the deadline passes, then clear the
// interrupt and stop.
// based on VL53L0X_perform_single_ref_calibration()
func (v *VL53L0X) performSingleRefCalibration(vhvInitByte uint8) error {

	if err := v.writeReg(SYSRANGE_START, 0x01|vhvInitByte); err != nil {
		return err
	}

	v.startTimeout()

	for {
		status, err := v.readReg(RESULT_INTERRUPT_STATUS)

		if err != nil {
			return err
		}

		if status&0x07 != 0 {
			break
		}

		if v.checkTimeoutExpired() {
			return ErrCalibrationTimedOut
		}

		time.Sleep(1 * time.Millisecond)
	}

	if err := v.writeReg(SYSTEM_INTERRUPT_CLEAR, 0x01); err != nil {
		return err
	}

	return v.writeReg(SYSRANGE_START, 0x00)
}

// refCalibration runs the one-time VHV then phase reference calibrations in
// order and restores the default sequence configuration. Called once during
// Init; both phases must succeed.
// based on VL53L0X_PerformRefCalibration()
func (v *VL53L0X) refCalibration() error {

	// VHV calibration
	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0x01); err != nil {
		return err
	}

	if err := v.performSingleRefCalibration(0x40); err != nil {
		return err
	}

	// phase calibration
	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0x02); err != nil {
		return err
	}

	if err := v.performSingleRefCalibration(0x00); err != nil {
		return err
	}

	// restore the previous sequence config
	return v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0xE8)
}

// phaseCalibration runs the standalone phase calibration needed after every
// VCSEL period change, preserving whatever sequence configuration was
// active.
// based on VL53L0X_perform_phase_calibration()
func (v *VL53L0X) phaseCalibration() error {

	sequenceConfig, err := v.readReg(SYSTEM_SEQUENCE_CONFIG)

	if err != nil {
		return err
	}

	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0x02); err != nil {
		return err
	}

	calErr := v.performSingleRefCalibration(0x00)

	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, sequenceConfig); err != nil {
		if calErr != nil {
			return calErr
		}
		return err
	}

	return calErr
}
