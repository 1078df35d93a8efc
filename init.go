package vl53l0x

import (
	"fmt"
	"time"
)

// modelID is the IDENTIFICATION_MODEL_ID value every VL53L0X reports.
const modelID uint8 = 0xEE

// tuningSettings is the vendor's DefaultTuningSettings register script
// (vl53l0x_tuning.h). Measured data, copied verbatim, never derived.
var tuningSettings = []regVal{
	{0xFF, 0x01}, {0x00, 0x00},

	{0xFF, 0x00}, {0x09, 0x00}, {0x10, 0x00}, {0x11, 0x00},

	{0x24, 0x01}, {0x25, 0xFF}, {0x75, 0x00},

	{0xFF, 0x01}, {0x4E, 0x2C}, {0x48, 0x00}, {0x30, 0x20},

	{0xFF, 0x00}, {0x30, 0x09}, {0x54, 0x00}, {0x31, 0x04},
	{0x32, 0x03}, {0x40, 0x83}, {0x46, 0x25}, {0x60, 0x00},
	{0x27, 0x00}, {0x50, 0x06}, {0x51, 0x00}, {0x52, 0x96},
	{0x56, 0x08}, {0x57, 0x30}, {0x61, 0x00}, {0x62, 0x00},
	{0x64, 0x00}, {0x65, 0x00}, {0x66, 0xA0},

	{0xFF, 0x01}, {0x22, 0x32}, {0x47, 0x14}, {0x49, 0xFF}, {0x4A, 0x00},

	{0xFF, 0x00}, {0x7A, 0x0A}, {0x7B, 0x00}, {0x78, 0x21},

	{0xFF, 0x01}, {0x23, 0x34}, {0x42, 0x00}, {0x44, 0xFF},
	{0x45, 0x26}, {0x46, 0x05}, {0x40, 0x40}, {0x0E, 0x06},
	{0x20, 0x1A}, {0x43, 0x40},

	{0xFF, 0x00}, {0x34, 0x03}, {0x35, 0x44},

	{0xFF, 0x01}, {0x31, 0x04}, {0x4B, 0x09}, {0x4C, 0x05}, {0x4D, 0x04},

	{0xFF, 0x00}, {0x44, 0x00}, {0x45, 0x20}, {0x47, 0x08},
	{0x48, 0x28}, {0x67, 0x00}, {0x70, 0x04}, {0x71, 0x01},
	{0x72, 0xFE}, {0x76, 0x00}, {0x77, 0x00},

	{0xFF, 0x01}, {0x0D, 0x01},

	{0xFF, 0x00}, {0x80, 0x01}, {0x01, 0xF8},

	{0xFF, 0x01}, {0x8E, 0x01}, {0x00, 0x01}, {0xFF, 0x00}, {0x80, 0x00},
}

// Init initializes the sensor using a sequence based on VL53L0X_DataInit(),
// VL53L0X_StaticInit(), and VL53L0X_PerformRefCalibration(). Reference SPAD
// calibration is not performed since ST performs it on the bare modules.
//
// On a calibration or SPAD discovery timeout the device is left in an
// indeterminate configuration and needs a full reinitialization.
func (v *VL53L0X) Init() error {

	v.SetTimeout(time.Millisecond * 500)

	err := v.dataInit()

	if err != nil {
		return fmt.Errorf("Error on dataInit(), %w", err)
	}

	err = v.staticInit()

	if err != nil {
		return fmt.Errorf("Error on staticInit(), %w", err)
	}

	return v.refCalibration()
}

// dataInit implements VL53L0X_DataInit(): voltage mode, standard I2C mode,
// stop variable capture and the default signal rate limit.
func (v *VL53L0X) dataInit() error {

	// check the model ID register (value specified in datasheet)
	model, err := v.readReg(IDENTIFICATION_MODEL_ID)

	if err != nil {
		return err
	}

	if model != modelID {
		return fmt.Errorf("unexpected model ID: 0x%X", model)
	}

	// sensor uses 1V8 mode for I/O by default; switch to 2V8 mode if
	// requested
	if v.io2v8 {
		val, err := v.readReg(VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV)

		if err != nil {
			return err
		}

		if err := v.writeReg(VHV_CONFIG_PAD_SCL_SDA_EXTSUP_HV, val|0x01); err != nil {
			return err
		}
	}

	// set I2C standard mode
	if err := v.writeReg(0x88, 0x00); err != nil {
		return err
	}

	// capture the stop variable; it is rewritten before every measurement
	// start
	err = v.withSequenceAccess(func() error {
		stop, err := v.readReg(0x91)

		if err != nil {
			return err
		}

		v.stopVariable = stop
		return nil
	})

	if err != nil {
		return err
	}

	// disable SIGNAL_RATE_MSRC (bit 1) and SIGNAL_RATE_PRE_RANGE (bit 4)
	// limit checks
	msrcControl, err := v.readReg(MSRC_CONFIG_CONTROL)

	if err != nil {
		return err
	}

	if err := v.writeReg(MSRC_CONFIG_CONTROL, msrcControl|0x12); err != nil {
		return err
	}

	// default final range signal rate limit of 0.25 MCPS
	if err := v.SetSignalRateLimit(0.25); err != nil {
		return err
	}

	return v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0xFF)
}

// staticInit implements VL53L0X_StaticInit(): reference SPAD setup, tuning
// settings, interrupt configuration and the initial timing budget.
func (v *VL53L0X) staticInit() error {

	if err := v.setReferenceSpads(); err != nil {
		return err
	}

	if err := v.writeScript(tuningSettings); err != nil {
		return err
	}

	// set interrupt config to new sample ready, active low
	if err := v.writeReg(SYSTEM_INTERRUPT_CONFIG_GPIO, 0x04); err != nil {
		return err
	}

	muxActive, err := v.readReg(GPIO_HV_MUX_ACTIVE_HIGH)

	if err != nil {
		return err
	}

	if err := v.writeReg(GPIO_HV_MUX_ACTIVE_HIGH, muxActive&^0x10); err != nil {
		return err
	}

	if err := v.writeReg(SYSTEM_INTERRUPT_CLEAR, 0x01); err != nil {
		return err
	}

	budgetUs, err := v.GetMeasurementTimingBudget()

	if err != nil {
		return err
	}

	// disable MSRC (Minimum Signal Rate Check) and TCC (Target Centre
	// Check) by default
	if err := v.writeReg(SYSTEM_SEQUENCE_CONFIG, 0xE8); err != nil {
		return err
	}

	// recalculate the timing budget for the trimmed sequence
	return v.SetMeasurementTimingBudget(budgetUs)
}

// setReferenceSpads programs the reference SPAD map from the NVM values,
// keeping only spadCount SPADs of the discovered type enabled.
// based on VL53L0X_set_reference_spads()
func (v *VL53L0X) setReferenceSpads() error {

	spadCount, spadTypeIsAperture, err := v.getSpadInfo()

	if err != nil {
		return err
	}

	// The SPAD map (RefGoodSpadMap) is read by
	// VL53L0X_get_info_from_device() in the API, but the same data is more
	// easily readable from GLOBAL_CONFIG_SPAD_ENABLES_REF_0 through _6
	refSpadMap := make([]byte, 6)

	if err := v.readMulti(GLOBAL_CONFIG_SPAD_ENABLES_REF_0, refSpadMap); err != nil {
		return err
	}

	err = v.onBank(0x01, func() error {
		if err := v.writeReg(DYNAMIC_SPAD_REF_EN_START_OFFSET, 0x00); err != nil {
			return err
		}

		return v.writeReg(DYNAMIC_SPAD_NUM_REQUESTED_REF_SPAD, 0x2C)
	})

	if err != nil {
		return err
	}

	if err := v.writeReg(GLOBAL_CONFIG_REF_EN_START_SELECT, 0xB4); err != nil {
		return err
	}

	// 12 is the first aperture spad
	firstSpadToEnable := uint8(0)

	if spadTypeIsAperture {
		firstSpadToEnable = 12
	}

	spadsEnabled := uint8(0)

	for i := uint8(0); i < 48; i++ {
		if i < firstSpadToEnable || spadsEnabled == spadCount {
			// This bit is lower than the first one that should be enabled,
			// or (spadCount) bits have already been enabled, so zero it
			refSpadMap[i/8] &^= 1 << (i % 8)
		} else if (refSpadMap[i/8]>>(i%8))&0x1 != 0 {
			spadsEnabled++
		}
	}

	return v.writeMulti(GLOBAL_CONFIG_SPAD_ENABLES_REF_0, refSpadMap)
}

// spadDiscoveryOpen and spadDiscoveryClose bracket the NVM access that
// exposes the reference SPAD info byte.
var (
	spadDiscoveryOpen = []regVal{
		{POWER_MANAGEMENT, 0x01},
		{INTERNAL_BANK_SELECT, 0x01},
		{0x00, 0x00},
	}

	spadDiscoveryClose = []regVal{
		{0x81, 0x00},
	}

	spadDiscoveryFinish = []regVal{
		{INTERNAL_BANK_SELECT, 0x01},
		{0x00, 0x01},
		{INTERNAL_BANK_SELECT, 0x00},
		{POWER_MANAGEMENT, 0x00},
	}
)

// getSpadInfo returns the reference SPAD count and type from the device NVM
// based on VL53L0X_get_info_from_device(), reduced to the SPAD fields
func (v *VL53L0X) getSpadInfo() (count uint8, typeIsAperture bool, err error) {

	if err := v.writeScript(spadDiscoveryOpen); err != nil {
		return 0, false, err
	}

	if err := v.writeReg(INTERNAL_BANK_SELECT, 0x06); err != nil {
		return 0, false, err
	}

	val, err := v.readReg(0x83)

	if err != nil {
		return 0, false, err
	}

	if err := v.writeReg(0x83, val|0x04); err != nil {
		return 0, false, err
	}

	if err := v.writeScript([]regVal{
		{INTERNAL_BANK_SELECT, 0x07},
		{0x81, 0x01},
		{POWER_MANAGEMENT, 0x01},
		{0x94, 0x6B},
		{0x83, 0x00},
	}); err != nil {
		return 0, false, err
	}

	v.startTimeout()

	for {
		ready, err := v.readReg(0x83)

		if err != nil {
			return 0, false, err
		}

		if ready != 0x00 {
			break
		}

		if v.checkTimeoutExpired() {
			// close the NVM access so the bank is not left switched
			v.teardownSpadDiscovery()
			return 0, false, ErrSpadDiscoveryTimedOut
		}

		time.Sleep(1 * time.Millisecond)
	}

	if err := v.writeReg(0x83, 0x01); err != nil {
		return 0, false, err
	}

	info, err := v.readReg(0x92)

	if err != nil {
		return 0, false, err
	}

	count = info & 0x7F
	typeIsAperture = (info>>7)&0x01 != 0

	if err := v.teardownSpadDiscovery(); err != nil {
		return 0, false, err
	}

	return count, typeIsAperture, nil
}

// teardownSpadDiscovery reverses the NVM access scripts and restores bank 0.
func (v *VL53L0X) teardownSpadDiscovery() error {

	if err := v.writeScript(spadDiscoveryClose); err != nil {
		return err
	}

	err := v.onBank(0x06, func() error {
		val, err := v.readReg(0x83)

		if err != nil {
			return err
		}

		return v.writeReg(0x83, val&^0x04)
	})

	if err != nil {
		return err
	}

	return v.writeScript(spadDiscoveryFinish)
}
