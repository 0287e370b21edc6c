package mmio

// Bus is a window onto a block of 32 bit memory mapped registers.  Offsets
// are in bytes from the start of the block and must be 4 byte aligned.
type Bus interface {
	Load32(offset uintptr) uint32
	Store32(offset uintptr, value uint32)
}

// Register32 is a single 32 bit register on a Bus.  The method set is the
// same as runtime/volatile.Register32 so code written against a register
// map reads the same on the host and on the metal.
type Register32 struct {
	bus    Bus
	offset uintptr
}

func NewRegister32(b Bus, offset uintptr) Register32 {
	return Register32{bus: b, offset: offset}
}

func (r Register32) Offset() uintptr {
	return r.offset
}

// Get returns the value in the register. It is the volatile equivalent of:
//
//	*r.Reg
func (r Register32) Get() uint32 {
	return r.bus.Load32(r.offset)
}

// Set updates the register value. It is the volatile equivalent of:
//
//	*r.Reg = value
func (r Register32) Set(value uint32) {
	r.bus.Store32(r.offset, value)
}

// SetBits reads the register, sets the given bits, and writes it back.
func (r Register32) SetBits(value uint32) {
	r.Set(r.Get() | value)
}

// ClearBits reads the register, clears the given bits, and writes it back.
func (r Register32) ClearBits(value uint32) {
	r.Set(r.Get() &^ value)
}

// HasBits reads the register and then checks to see if any of the passed
// bits are set.
func (r Register32) HasBits(value uint32) bool {
	return (r.Get() & value) > 0
}

//ReplaceBits is a helper to simplify setting multiple bits high and/or low
//at once. It replaces the bits in mask (after shifting by pos) with value.
func (r Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | value<<pos)
}
