package model

// Printer represents one machine in the fleet with its capabilities.
type Printer struct {
	ID               string
	Name             string
	HasMultiMaterial bool // AMS-style unit, can switch colors unattended
	CanRunAfterHours bool
	PlateCapacity    int    // number of plates the hardware can hold preloaded
	MountedColor     string // color of the spool physically loaded
}

// CanPrintColor reports whether the printer can run a cycle of the given
// normalized color key without operator intervention. Multi-material units
// can switch; single-material units must have the color mounted.
func (p Printer) CanPrintColor(colorKey, mountedKey string) bool {
	if p.HasMultiMaterial {
		return true
	}
	return colorKey == mountedKey
}
