package vl53l0x

import (
	"io"
	"log"
	"testing"
	"time"
)

// regWrite is one logged register write (address byte plus payload).
type regWrite struct {
	reg  uint8
	data []byte
}

// fakeBus simulates the sensor's register file behind the Bus interface.
// Multi-byte transfers auto-increment the register address. Reads consult a
// per-register queue first so tests can script poll-loop behavior, then
// fall back to the flat register map. Bank switching is not modeled; tests
// that care about banked registers assert on the write log instead.
type fakeBus struct {
	regs    map[uint8]uint8
	queued  map[uint8][]uint8
	lastReg uint8
	writes  []regWrite
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs:   make(map[uint8]uint8),
		queued: make(map[uint8][]uint8),
	}
}

func (f *fakeBus) WriteBytes(buf []byte) (int, error) {

	if len(buf) == 0 {
		return 0, nil
	}

	f.lastReg = buf[0]

	if len(buf) == 1 {
		// address-only write preceding a read
		return 1, nil
	}

	for i, b := range buf[1:] {
		f.regs[buf[0]+uint8(i)] = b
	}

	data := make([]byte, len(buf)-1)
	copy(data, buf[1:])
	f.writes = append(f.writes, regWrite{reg: buf[0], data: data})

	return len(buf), nil
}

func (f *fakeBus) ReadBytes(buf []byte) (int, error) {

	for i := range buf {
		reg := f.lastReg + uint8(i)

		if q := f.queued[reg]; len(q) > 0 {
			buf[i] = q[0]
			f.queued[reg] = q[1:]
			continue
		}

		buf[i] = f.regs[reg]
	}

	return len(buf), nil
}

// seed16 stores a 16-bit value big-endian at reg.
func (f *fakeBus) seed16(reg uint8, val uint16) {
	f.regs[reg] = uint8(val >> 8)
	f.regs[reg+1] = uint8(val)
}

// reg16 reads back a 16-bit register pair.
func (f *fakeBus) reg16(reg uint8) uint16 {
	return uint16(f.regs[reg])<<8 | uint16(f.regs[reg+1])
}

// writesTo returns the logged payload bytes written to reg, in order.
func (f *fakeBus) writesTo(reg uint8) [][]byte {

	var out [][]byte

	for _, w := range f.writes {
		if w.reg == reg {
			out = append(out, w.data)
		}
	}

	return out
}

// fakeClock advances a fixed step on every reading so deadline checks can
// be driven deterministically. A zero step freezes time.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// newFakeDevice seeds a register file resembling a freshly booted sensor
// with the default 0xE8 sequence, a 14 PCLK pre-range period and a 10 PCLK
// final range period.
func newFakeDevice() *fakeBus {

	f := newFakeBus()

	f.regs[IDENTIFICATION_MODEL_ID] = modelID
	f.regs[SYSTEM_SEQUENCE_CONFIG] = 0xE8

	f.regs[PRE_RANGE_CONFIG_VCSEL_PERIOD] = encodeVcselPeriod(14)
	f.regs[FINAL_RANGE_CONFIG_VCSEL_PERIOD] = encodeVcselPeriod(10)

	f.regs[MSRC_CONFIG_TIMEOUT_MACROP] = 0x2C
	f.seed16(PRE_RANGE_CONFIG_TIMEOUT_MACROP_HI, encodeTimeout(285))
	f.seed16(FINAL_RANGE_CONFIG_TIMEOUT_MACROP_HI, encodeTimeout(285+510))

	// calibration interrupts fire immediately
	f.regs[RESULT_INTERRUPT_STATUS] = 0x07

	// stop variable
	f.regs[0x91] = 0x3C

	// SPAD discovery: the first read services the read-modify-write, the
	// second is the poll reporting data ready
	f.queued[0x83] = []uint8{0x00, 0x01}

	// 32 aperture reference SPADs
	f.regs[0x92] = 0xA0

	for i := uint8(0); i < 6; i++ {
		f.regs[GLOBAL_CONFIG_SPAD_ENABLES_REF_0+i] = 0xFF
	}

	return f
}

// newTestSensor wires a sensor to the fake bus and clock without running
// Init, so tests control the starting register state.
func newTestSensor(t *testing.T, bus Bus, clock *fakeClock) *VL53L0X {

	t.Helper()

	v, err := newSensor(bus, true)

	if err != nil {
		t.Fatalf("newSensor() err=%v", err)
	}

	v.log = log.New(io.Discard, "", log.LstdFlags)
	v.now = clock.now
	v.SetTimeout(500 * time.Millisecond)

	return v
}
