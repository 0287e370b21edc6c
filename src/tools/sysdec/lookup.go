package sysdec

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrUnknownRegister = errors.New("unknown register")
var ErrUnknownPeripheral = errors.New("unknown peripheral")

// Binding is one peripheral of a device at its mapped address.
type Binding struct {
	Device     string
	Peripheral *PeripheralDef
	Base       uintptr
	registers  []*RegisterDef //address order
}

// Bind finds the named peripheral in d and works out where it lives.  The
// names in the maps are copied into the definitions, as the generator
// used to do.
func Bind(d DeviceDef, name string) (*Binding, error) {
	p, ok := d.Peripheral[name]
	if !ok {
		return nil, fmt.Errorf("%s on %s: %w", name, d.Name, ErrUnknownPeripheral)
	}
	addr, ok := d.MMIOBindings[name]
	if !ok {
		return nil, fmt.Errorf("%s on %s has no mmio binding: %w", name, d.Name, ErrUnknownPeripheral)
	}
	p.Name = name
	b := &Binding{
		Device:     d.Name,
		Peripheral: p,
		Base:       uintptr(addr + p.AddressBlock.BaseAddress),
	}
	for rname, r := range p.Register {
		r.Name = rname
		for fname, f := range r.Field {
			f.Name = fname
			if !f.Access.IsSet() {
				f.Access = r.Access
			}
			for ename, e := range f.EnumeratedValue {
				e.Name = ename
			}
		}
		b.registers = append(b.registers, r)
	}
	sort.Slice(b.registers, func(i, j int) bool {
		return b.registers[i].AddressOffset < b.registers[j].AddressOffset
	})
	return b, nil
}

// Registers returns the register definitions in address order.
func (b *Binding) Registers() []*RegisterDef {
	return b.registers
}

// Lookup finds a register by name (any case) or by offset written as a
// number, like "0x8".
func (b *Binding) Lookup(name string) (*RegisterDef, error) {
	for _, r := range b.registers {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	if off, err := strconv.ParseInt(name, 0, 32); err == nil {
		for _, r := range b.registers {
			if int64(r.AddressOffset) == off {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("%s.%s: %w", b.Peripheral.Name, name, ErrUnknownRegister)
}

// Decode renders v as the named fields of r, most significant first, with
// enumerated values spelled out.  A register with no fields decodes to
// its value.
func Decode(r *RegisterDef, v uint32) string {
	if len(r.Field) == 0 {
		return fmt.Sprintf("%s=%d", r.Name, v)
	}
	fields := make([]*FieldDef, 0, len(r.Field))
	for _, f := range r.Field {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].BitRange.Lsb > fields[j].BitRange.Lsb
	})
	parts := []string{}
	for _, f := range fields {
		x := f.BitRange.Extract(v)
		s := fmt.Sprintf("%s=%d", f.Name, x)
		for _, e := range f.EnumeratedValue {
			if uint32(e.Value) == x {
				s = fmt.Sprintf("%s=%s", f.Name, e.Name)
				break
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
