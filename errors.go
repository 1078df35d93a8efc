package vl53l0x

import "errors"

var (
	// ErrInvalidPeriod is returned when a VCSEL pulse period outside the
	// step's allowed even set is requested.
	ErrInvalidPeriod = errors.New("vcsel pulse period outside allowed set")

	// ErrBudgetTooSmall is returned for timing budgets below the 20 ms
	// device minimum.
	ErrBudgetTooSmall = errors.New("timing budget below 20000 us minimum")

	// ErrTimeoutTooLarge is returned when the enabled sequence steps leave
	// no room for the final range timeout within the requested budget.
	ErrTimeoutTooLarge = errors.New("sequence step timeouts exceed timing budget")

	// ErrCalibrationTimedOut is returned when a reference calibration poll
	// exceeds the deadline. The device needs full reinitialization.
	ErrCalibrationTimedOut = errors.New("timeout waiting for reference calibration")

	// ErrSpadDiscoveryTimedOut is returned when reading the reference SPAD
	// info exceeds the deadline during Init.
	ErrSpadDiscoveryTimedOut = errors.New("timeout reading reference SPAD info")

	// ErrRangeTimedOut is returned when the single-shot start bit does not
	// clear before the deadline. The sentinel reading 65535 accompanies it.
	ErrRangeTimedOut = errors.New("timeout waiting for range measurement start")
)
