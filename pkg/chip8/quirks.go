package chip8

import (
	"fmt"
	"strings"
)

// MemoryPolicy decides what happens when an I-relative access runs past the
// end of the 4 KiB address space.
type MemoryPolicy uint8

const (
	// MemoryWrap masks the address to 12 bits.
	MemoryWrap MemoryPolicy = iota
	// MemoryClip reads zero and drops writes.
	MemoryClip
)

func (p MemoryPolicy) String() string {
	switch p {
	case MemoryWrap:
		return "wrap"
	case MemoryClip:
		return "clip"
	}
	return fmt.Sprintf("MemoryPolicy(%d)", uint8(p))
}

func ParseMemoryPolicy(s string) (MemoryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrap", "":
		return MemoryWrap, nil
	case "clip":
		return MemoryClip, nil
	}
	return MemoryWrap, fmt.Errorf("unknown memory policy %q (want wrap or clip)", s)
}

// Quirks selects between behaviours that differ across CHIP-8 interpreters.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX, as the COSMAC VIP did.
	// When false VX is shifted in place.
	ShiftUsesVY bool
	// FlagAfterResult makes 8XY5/8XY6/8XY7/8XYE store VX before VF, so the
	// flag wins when X is F. By default VF is stored first and the result is
	// computed from the registers as they stand afterwards. 8XY4 always
	// stores VF last.
	FlagAfterResult bool
	Memory          MemoryPolicy
}
