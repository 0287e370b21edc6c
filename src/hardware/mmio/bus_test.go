package mmio

import "testing"

type fakeBus struct {
	words  map[uintptr]uint32
	loads  int
	stores int
}

func newFakeBus() *fakeBus {
	return &fakeBus{words: map[uintptr]uint32{}}
}

func (f *fakeBus) Load32(offset uintptr) uint32 {
	f.loads++
	return f.words[offset]
}

func (f *fakeBus) Store32(offset uintptr, value uint32) {
	f.stores++
	f.words[offset] = value
}

func TestGetSet(t *testing.T) {
	b := newFakeBus()
	r := NewRegister32(b, 0x8)
	r.Set(0xdeadbeef)
	if b.words[0x8] != 0xdeadbeef {
		t.Errorf("store went to the wrong place: %v", b.words)
	}
	if r.Get() != 0xdeadbeef {
		t.Errorf("expected deadbeef but got %x", r.Get())
	}
	if r.Offset() != 0x8 {
		t.Errorf("bad offset %x", r.Offset())
	}
}

func TestBitHelpers(t *testing.T) {
	b := newFakeBus()
	r := NewRegister32(b, 0)
	r.Set(0b0001)
	r.SetBits(0b0100)
	checkValue(t, r, 0b0101)
	r.ClearBits(0b0001)
	checkValue(t, r, 0b0100)
	if !r.HasBits(0b0110) {
		t.Errorf("HasBits should be true if any bit matches")
	}
	if r.HasBits(0b0011) {
		t.Errorf("HasBits should be false when no bits match")
	}
	r.Set(0xFFFF)
	r.ReplaceBits(0x3, 0xF, 4)
	checkValue(t, r, 0xFF3F)
}

func TestReadModifyWriteTouchesBusOnce(t *testing.T) {
	b := newFakeBus()
	r := NewRegister32(b, 4)
	r.SetBits(1)
	if b.loads != 1 || b.stores != 1 {
		t.Errorf("expected one load and one store, got %d and %d", b.loads, b.stores)
	}
}

func checkValue(t *testing.T, r Register32, expected uint32) {
	t.Helper()
	if got := r.Get(); got != expected {
		t.Errorf("expected %#x but got %#x", expected, got)
	}
}
