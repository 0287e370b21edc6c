package sysdec

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Describe writes a human readable register reference for b.
func Describe(w io.Writer, b *Binding) error {
	p := b.Peripheral
	if _, err := fmt.Fprintf(w, "%s on %s at 0x%08x (0x%x bytes)\n", p.Name, b.Device,
		b.Base, p.AddressBlock.Size); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimSpace(p.Description), "\n") {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(line))
	}
	for _, r := range b.Registers() {
		fmt.Fprintf(w, "\n0x%02x %-5s %-2s %s\n", r.AddressOffset, r.Name, r.Access,
			firstLine(r.Description))
		fields := make([]*FieldDef, 0, len(r.Field))
		for _, f := range r.Field {
			fields = append(fields, f)
		}
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].BitRange.Lsb < fields[j].BitRange.Lsb
		})
		for _, f := range fields {
			fmt.Fprintf(w, "     %-7s %-6s %s\n", f.BitRange, f.Name, firstLine(f.Description))
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
