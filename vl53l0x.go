// go-vl53l0x is an I2C driver for the ST VL53L0X time-of-flight sensor.
package vl53l0x

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/swdee/go-i2c"
)

// Address is the default address of the sensor on I2C bus
const Address uint8 = 0x29

// Bus is the two-wire transport the driver talks through. *i2c.Options from
// github.com/swdee/go-i2c satisfies it; tests substitute a simulated bus.
type Bus interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
}

// VL53L0X represents a single VL53L0X sensor instance. All driver state
// lives here; the driver keeps no globals. A handle is not safe for
// concurrent calls: the sensor's bank-select register makes interleaved
// operations on one device undefined, so serialization is left to the
// caller.
type VL53L0X struct {
	// bus is the I2C interface
	bus Bus

	// address is the sensor's 7-bit bus address
	address uint8

	// io2v8 selects 2V8 I/O voltage mode at Init
	io2v8 bool

	// stopVariable is an opaque calibration byte captured once at Init and
	// rewritten before every measurement start
	stopVariable uint8

	// measurementTimingBudgetUs caches the last applied timing budget
	measurementTimingBudgetUs uint32

	ioTimeout    time.Duration
	didTimeout   bool
	timeoutStart time.Time

	// now supplies the monotonic clock bounding every poll loop
	now func() time.Time

	// log logger for debugging
	log *log.Logger
}

// New returns a new VL53L0X sensor instance on the given bus. If io2v8 is
// true the sensor is configured for 2V8 I/O mode during initialization.
func New(bus Bus, io2v8 bool) (*VL53L0X, error) {

	v, err := newSensor(bus, io2v8)

	if err != nil {
		return nil, err
	}

	// create null logger
	v.log = log.New(io.Discard, "", log.LstdFlags)

	// finish device setup
	err = v.setup()

	return v, err
}

// NewWithLog creates a sensor instance with a logger to be used for debugging
func NewWithLog(bus Bus, io2v8 bool, log *log.Logger) (*VL53L0X, error) {

	v, err := newSensor(bus, io2v8)

	if err != nil {
		return nil, err
	}

	// set logger
	v.log = log

	// finish device setup
	err = v.setup()

	return v, err
}

// newSensor returns a new VL53L0X sensor instance
func newSensor(bus Bus, io2v8 bool) (*VL53L0X, error) {

	if bus == nil {
		return nil, fmt.Errorf("I2C device is not initiated")
	}

	v := &VL53L0X{
		bus:       bus,
		address:   Address,
		io2v8:     io2v8,
		ioTimeout: 0, // no timeout by default
		now:       time.Now,
	}

	return v, nil
}

// setup completes New instance creation and is a common function for New()
// and NewWithLog()
func (v *VL53L0X) setup() error {

	v.log.Printf("Starting Setup()")

	// initialize device
	err := v.Init()

	if err != nil {
		return fmt.Errorf("Failed to Init device: %w", err)
	}

	v.log.Printf("Device Init()'d")

	return nil
}

// SetAddress changes the sensor's bus address and, when the bus is a go-i2c
// connection, reopens it at the new address. Other Bus implementations must
// retarget themselves after this call.
func (v *VL53L0X) SetAddress(newAddr uint8) error {

	if err := v.writeReg(I2C_SLAVE_DEVICE_ADDRESS, newAddr&0x7F); err != nil {
		return err
	}

	v.address = newAddr & 0x7F

	conn, ok := v.bus.(*i2c.Options)

	if !ok {
		return nil
	}

	// open new connection
	newConn, err := i2c.New(v.address, conn.GetDev())

	if err != nil {
		return err
	}

	// close existing connection
	conn.Close()

	// replace with new connection
	v.bus = newConn
	return nil
}
