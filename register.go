package vl53l0x

import "fmt"

const (
	// Measurement start/stop and sequence control
	SYSRANGE_START         uint8 = 0x00
	SYSTEM_SEQUENCE_CONFIG uint8 = 0x01

	// Continuous mode inter-measurement period
	SYSTEM_INTERMEASUREMENT_PERIOD uint8 = 0x04

	// Interrupt configuration and status
	SYSTEM_INTERRUPT_CONFIG_GPIO uint8 = 0x0A
	SYSTEM_INTERRUPT_CLEAR       uint8 = 0x0B
	RESULT_INTERRUPT_STATUS      uint8 = 0x13
	GPIO_HV_MUX_ACTIVE_HIGH      uint8 = 0x84

	// Result block; the range value sits 10 bytes in
	RESULT_RANGE_STATUS uint8 = 0x14

	// Signal rate limit (Q9.7 MCPS) and MSRC control
	FINAL_RANGE_CONFIG_MIN_COUNT_RATE_RTN_LIMIT uint8 = 0x44
	MSRC_CONFIG_CONTROL                         uint8 = 0x60

	// Pre-range step configuration
	PRE_RANGE_CONFIG_VCSEL_PERIOD      uint8 = 0x50
	PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI uint8 = 0x51
	PRE_RANGE_CONFIG_VALID_PHASE_LOW   uint8 = 0x56
	PRE_RANGE_CONFIG_VALID_PHASE_HIGH  uint8 = 0x57

	// Final-range step configuration
	FINAL_RANGE_CONFIG_VCSEL_PERIOD      uint8 = 0x70
	FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI uint8 = 0x71
	FINAL_RANGE_CONFIG_VALID_PHASE_LOW   uint8 = 0x47
	FINAL_RANGE_CONFIG_VALID_PHASE_HIGH  uint8 = 0x48

	// Shared MSRC/DSS/TCC timeout
	MSRC_CONFIG_TIMEOUT_MACROP uint8 = 0x46

	// Phase calibration tuning (ALGO_PHASECAL_LIM lives on bank 1)
	GLOBAL_CONFIG_VCSEL_WIDTH    uint8 = 0x32
	ALGO_PHASECAL_CONFIG_TIMEOUT uint8 = 0x30
	ALGO_PHASECAL_LIM            uint8 = 0x30

	// Reference SPAD configuration
	GLOBAL_CONFIG_SPAD_ENABLES_REF_0    uint8 = 0xB0
	GLOBAL_CONFIG_REF_EN_START_SELECT   uint8 = 0xB6
	DYNAMIC_SPAD_NUM_REQUESTED_REF_SPAD uint8 = 0x4E
	DYNAMIC_SPAD_REF_EN_START_OFFSET    uint8 = 0x4F

	// I/O voltage selection
	VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV uint8 = 0x89

	// Oscillator calibration for timed continuous mode
	OSC_CALIBRATE_VAL uint8 = 0xF8

	// I2C address configuration
	I2C_SLAVE_DEVICE_ADDRESS uint8 = 0x8A

	// Identification
	IDENTIFICATION_MODEL_ID uint8 = 0xC0

	// Bank select. Nearly every scripted sequence toggles this register;
	// it must be back at 0x00 before any higher-level operation runs.
	INTERNAL_BANK_SELECT uint8 = 0xFF

	// Power management toggle used by the vendor access scripts
	POWER_MANAGEMENT uint8 = 0x80
)

// regVal is one step of a fixed register script.
type regVal struct {
	reg uint8
	val uint8
}

// writeReg writes an 8 bit value to the register
func (v *VL53L0X) writeReg(reg uint8, value uint8) error {

	buf := []byte{reg, value}

	if _, err := v.bus.WriteBytes(buf); err != nil {
		return err
	}

	return nil
}

// writeReg16Bit writes a 16 bit value to the register
func (v *VL53L0X) writeReg16Bit(reg uint8, value uint16) error {

	buf := []byte{reg, byte(value >> 8), byte(value)}

	if _, err := v.bus.WriteBytes(buf); err != nil {
		return err
	}

	return nil
}

// writeReg32Bit writes a 32 bit value to the register
func (v *VL53L0X) writeReg32Bit(reg uint8, value uint32) error {

	buf := []byte{
		reg,
		byte(value >> 24), byte(value >> 16),
		byte(value >> 8), byte(value),
	}

	if _, err := v.bus.WriteBytes(buf); err != nil {
		return err
	}

	return nil
}

// readReg reads an 8-bit value from a register.
func (v *VL53L0X) readReg(reg uint8) (uint8, error) {

	// Write the register address.
	if _, err := v.bus.WriteBytes([]byte{reg}); err != nil {
		return 0, err
	}

	// Read one byte.
	buf := make([]byte, 1)
	n, err := v.bus.ReadBytes(buf)

	if err != nil {
		return 0, err
	}

	if n < 1 {
		return 0, fmt.Errorf("readReg: insufficient data")
	}

	return buf[0], nil
}

// readReg16Bit reads a 16-bit value from a register.
func (v *VL53L0X) readReg16Bit(reg uint8) (uint16, error) {

	if _, err := v.bus.WriteBytes([]byte{reg}); err != nil {
		return 0, err
	}

	buf := make([]byte, 2)
	n, err := v.bus.ReadBytes(buf)

	if err != nil {
		return 0, err
	}

	if n < 2 {
		return 0, fmt.Errorf("readReg16Bit: insufficient data")
	}

	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// writeMulti writes the given bytes to consecutive registers starting at reg
func (v *VL53L0X) writeMulti(reg uint8, src []byte) error {

	buf := make([]byte, 0, len(src)+1)
	buf = append(buf, reg)
	buf = append(buf, src...)

	if _, err := v.bus.WriteBytes(buf); err != nil {
		return err
	}

	return nil
}

// readMulti reads len(dst) bytes from consecutive registers starting at reg
func (v *VL53L0X) readMulti(reg uint8, dst []byte) error {

	if _, err := v.bus.WriteBytes([]byte{reg}); err != nil {
		return err
	}

	n, err := v.bus.ReadBytes(dst)

	if err != nil {
		return err
	}

	if n < len(dst) {
		return fmt.Errorf("readMulti: insufficient data")
	}

	return nil
}

// writeScript runs a fixed register write sequence.
func (v *VL53L0X) writeScript(script []regVal) error {

	for _, s := range script {
		if err := v.writeReg(s.reg, s.val); err != nil {
			return err
		}
	}

	return nil
}

// onBank runs fn with the bank-select register switched to bank and restores
// bank 0 on every exit path. Higher-level operations assume bank 0.
func (v *VL53L0X) onBank(bank uint8, fn func() error) error {

	if err := v.writeReg(INTERNAL_BANK_SELECT, bank); err != nil {
		return err
	}

	fnErr := fn()

	if err := v.writeReg(INTERNAL_BANK_SELECT, 0x00); err != nil {
		if fnErr != nil {
			return fnErr
		}
		return err
	}

	return fnErr
}

// sequenceAccessOpen and sequenceAccessClose bracket access to the
// stop-variable register (0x91). The exact write order comes from the
// vendor's measurement start sequence.
var (
	sequenceAccessOpen = []regVal{
		{POWER_MANAGEMENT, 0x01},
		{INTERNAL_BANK_SELECT, 0x01},
		{0x00, 0x00},
	}

	sequenceAccessClose = []regVal{
		{0x00, 0x01},
		{INTERNAL_BANK_SELECT, 0x00},
		{POWER_MANAGEMENT, 0x00},
	}
)

// withSequenceAccess runs fn inside the stop-variable access bracket,
// closing the bracket even when fn fails so the bank ends up back at 0.
func (v *VL53L0X) withSequenceAccess(fn func() error) error {

	if err := v.writeScript(sequenceAccessOpen); err != nil {
		return err
	}

	fnErr := fn()

	if err := v.writeScript(sequenceAccessClose); err != nil {
		if fnErr != nil {
			return fnErr
		}
		return err
	}

	return fnErr
}
