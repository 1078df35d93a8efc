package vl53l0x

// sequenceStepEnables reports which of the five ranging sub-steps are
// switched on in SYSTEM_SEQUENCE_CONFIG. The decode is valid only right
// after reading; re-fetch before each dependent computation.
type sequenceStepEnables struct {
	tcc        bool
	dss        bool
	msrc       bool
	preRange   bool
	finalRange bool
}

// sequenceStepTimeouts holds the per-step timeouts in both MCLKs and
// microseconds along with the VCSEL periods they were measured at. The
// final range values are net of the pre-range contribution: the device
// stores final range as pre-range plus final range when pre-range is
// enabled, and that addition is undone here so the budget math sees the
// step's own cost.
type sequenceStepTimeouts struct {
	preRangeVcselPeriodPclks   uint8
	finalRangeVcselPeriodPclks uint8

	msrcDssTccMclks uint16
	msrcDssTccUs    uint32

	preRangeMclks uint16
	preRangeUs    uint32

	finalRangeMclks uint16
	finalRangeUs    uint32
}

// getSequenceStepEnables reads the sequence config and decodes the step
// enable bits
// based on VL53L0X_GetSequenceStepEnables()
func (v *VL53L0X) getSequenceStepEnables() (sequenceStepEnables, error) {

	sequenceConfig, err := v.readReg(SYSTEM_SEQUENCE_CONFIG)

	if err != nil {
		return sequenceStepEnables{}, err
	}

	return sequenceStepEnables{
		tcc:        (sequenceConfig>>4)&0x1 != 0,
		dss:        (sequenceConfig>>3)&0x1 != 0,
		msrc:       (sequenceConfig>>2)&0x1 != 0,
		preRange:   (sequenceConfig>>6)&0x1 != 0,
		finalRange: (sequenceConfig>>7)&0x1 != 0,
	}, nil
}

// getSequenceStepTimeouts reads all step timeouts and converts them to
// microseconds at the VCSEL period each step currently runs at
// based on get_sequence_step_timeout(), but reading every step at once
func (v *VL53L0X) getSequenceStepTimeouts(enables sequenceStepEnables) (sequenceStepTimeouts, error) {

	var t sequenceStepTimeouts

	prePeriod, err := v.GetVcselPulsePeriod(VcselPeriodPreRange)

	if err != nil {
		return t, err
	}

	t.preRangeVcselPeriodPclks = prePeriod

	msrcReg, err := v.readReg(MSRC_CONFIG_TIMEOUT_MACROP)

	if err != nil {
		return t, err
	}

	t.msrcDssTccMclks = uint16(msrcReg) + 1
	t.msrcDssTccUs = timeoutMclksToMicroseconds(t.msrcDssTccMclks, t.preRangeVcselPeriodPclks)

	preEncoded, err := v.readReg16Bit(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI)

	if err != nil {
		return t, err
	}

	t.preRangeMclks = decodeTimeout(preEncoded)
	t.preRangeUs = timeoutMclksToMicroseconds(t.preRangeMclks, t.preRangeVcselPeriodPclks)

	finalPeriod, err := v.GetVcselPulsePeriod(VcselPeriodFinalRange)

	if err != nil {
		return t, err
	}

	t.finalRangeVcselPeriodPclks = finalPeriod

	finalEncoded, err := v.readReg16Bit(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI)

	if err != nil {
		return t, err
	}

	t.finalRangeMclks = decodeTimeout(finalEncoded)

	if enables.preRange {
		t.finalRangeMclks -= t.preRangeMclks
	}

	t.finalRangeUs = timeoutMclksToMicroseconds(t.finalRangeMclks, t.finalRangeVcselPeriodPclks)

	return t, nil
}
