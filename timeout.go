package vl53l0x

// decodeTimeout decodes a sequence step timeout in MCLKs from the packed
// register value, format "(LSByte << MSByte) + 1"
// based on VL53L0X_decode_timeout()
func decodeTimeout(regVal uint16) uint16 {
	return (uint16(regVal&0x00FF) << uint16((regVal&0xFF00)>>8)) + 1
}

// encodeTimeout encodes a sequence step timeout in MCLKs into the packed
// register value. The encoding is lossy: mantissas wider than 8 bits are
// shifted down and the low bits discarded.
// based on VL53L0X_encode_timeout()
func encodeTimeout(timeoutMclks uint16) uint16 {
	var lsByte uint32
	var msByte uint16 = 0

	if timeoutMclks > 0 {
		lsByte = uint32(timeoutMclks) - 1

		for lsByte&0xFFFFFF00 > 0 {
			lsByte >>= 1
			msByte++
		}

		return (msByte << 8) | uint16(lsByte&0xFF)
	}

	return 0
}

// calcMacroPeriod calculates the macro period in nanoseconds from the VCSEL
// period in PCLKs. PLL period is 1655 ps, one macro period is 2304 VCLKs.
// based on VL53L0X_calc_macro_period_ps()
func calcMacroPeriod(vcselPeriodPclks uint8) uint32 {
	return (2304*uint32(vcselPeriodPclks)*1655 + 500) / 1000
}

// timeoutMclksToMicroseconds converts a sequence step timeout from MCLKs to
// microseconds for the given VCSEL period in PCLKs
// based on VL53L0X_calc_timeout_us()
func timeoutMclksToMicroseconds(timeoutMclks uint16, vcselPeriodPclks uint8) uint32 {

	macroPeriodNs := calcMacroPeriod(vcselPeriodPclks)

	return (uint32(timeoutMclks)*macroPeriodNs + macroPeriodNs/2) / 1000
}

// timeoutMicrosecondsToMclks converts a sequence step timeout from
// microseconds to MCLKs for the given VCSEL period in PCLKs
// based on VL53L0X_calc_timeout_mclks()
func timeoutMicrosecondsToMclks(timeoutUs uint32, vcselPeriodPclks uint8) uint32 {

	macroPeriodNs := calcMacroPeriod(vcselPeriodPclks)

	return (timeoutUs*1000 + macroPeriodNs/2) / macroPeriodNs
}

// decodeVcselPeriod decodes a VCSEL pulse period in PCLKs from the register
// value
// based on VL53L0X_decode_vcsel_period()
func decodeVcselPeriod(regVal uint8) uint8 {
	return (regVal + 1) << 1
}

// encodeVcselPeriod encodes a VCSEL pulse period in PCLKs into the register
// value. Only even periods encode correctly.
// based on VL53L0X_encode_vcsel_period()
func encodeVcselPeriod(periodPclks uint8) uint8 {
	return (periodPclks >> 1) - 1
}
