package sysdec

// DeviceDef is a board: the peripherals on it and where each one is
// mapped.
type DeviceDef struct {
	Vendor       string
	Name         string
	Description  string
	MMIOBindings map[string]int
	Peripheral   map[string]*PeripheralDef
}

type PeripheralDef struct {
	Name         string //if set, will be ignored, it is copied from the key in map
	Version      int
	Description  string
	AddressBlock AddressBlockDef
	Register     map[string]*RegisterDef
}

type AddressBlockDef struct {
	BaseAddress int
	Size        int
}

type RegisterDef struct {
	Name          string //if set, will be ignored, it is copied from the key in map
	Description   string
	AddressOffset int
	Size          int
	Access        AccessDef
	ResetValue    int
	Field         map[string]*FieldDef
}

type FieldDef struct {
	Name            string //copied from the map
	Description     string
	BitRange        BitRangeDef
	Access          AccessDef
	EnumeratedValue map[string]*EnumeratedValueDef
}

type EnumeratedValueDef struct {
	Name        string //don't bother setting,will be copied from the map
	Description string
	Value       int
}
