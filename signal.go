package vl53l0x

import "fmt"

// SetSignalRateLimit sets the final range signal rate limit in MCPS (mega
// counts per second). This is the minimum amplitude of the reflected signal
// for the sensor to report a valid reading. Lowering the limit increases
// the potential range but also the likelihood of readings caused by
// unwanted reflections. Valid values are 0 to 511.99 MCPS; Init programs
// the 0.25 MCPS default.
func (v *VL53L0X) SetSignalRateLimit(limitMcps float32) error {

	if limitMcps < 0 || limitMcps > 511.99 {
		return fmt.Errorf("signal rate limit %v MCPS out of range", limitMcps)
	}

	// Q9.7 fixed point format (9 integer bits, 7 fractional bits)
	return v.writeReg16Bit(FINAL_RANGE_CONFIG_MIN_COUNT_RATE_RTN_LIMIT,
		uint16(limitMcps*(1<<7)))
}

// GetSignalRateLimit returns the final range signal rate limit in MCPS
func (v *VL53L0X) GetSignalRateLimit() (float32, error) {

	val, err := v.readReg16Bit(FINAL_RANGE_CONFIG_MIN_COUNT_RATE_RTN_LIMIT)

	if err != nil {
		return 0, err
	}

	return float32(val) / (1 << 7), nil
}
