package autosplit

// ProcessNames are the executables the splitter attaches to.
var ProcessNames = []string{"Sonic3AIR.exe"}

const (
	// RegionSize identifies the allocation holding the emulated RAM.
	RegionSize = 0x521000
	// RAMOffset is the start of the emulated RAM inside that allocation.
	RAMOffset = 0x400020
)

// Offsets from the RAM base. Per-slot values sit at base + stride*(slot-1).
const (
	OffsetSaveSelect       = 0xEF4B
	OffsetState            = 0xF600
	OffsetSaveSlot         = 0xE6AC
	OffsetSaveSlotStride   = 0xA
	OffsetZoneSelect       = 0xB15F
	OffsetZoneSelectStride = 0x4A
	OffsetAct              = 0xEE4F
	OffsetZone             = 0xEE4E
	OffsetLevelStarted     = 0xF711
	OffsetEndOfLevel       = 0xFAA8
	OffsetGameEnding       = 0xEF72
	OffsetTimeBonus        = 0xF7D2
)

// SaveSlotOffset locates the status byte of a 1-based save slot.
func SaveSlotOffset(slot uint8) uint64 {
	return OffsetSaveSlot + OffsetSaveSlotStride*uint64(slot-1)
}

// ZoneSelectOffset locates the zone-select index of a 1-based save slot.
func ZoneSelectOffset(slot uint8) uint64 {
	return OffsetZoneSelect + OffsetZoneSelectStride*uint64(slot-1)
}

// Game state byte values.
const (
	StateSaveSelect uint8 = 0x4C
	StateLoading    uint8 = 0x8C
	StateInGame     uint8 = 0x0C
)

// Save slot status byte values.
const (
	SlotNewGame    uint8 = 0x80
	SlotInProgress uint8 = 0x00
)

// Save slots are numbered 1-8; 0 selects "no save".
const (
	minSlot = 1
	maxSlot = 8
)

func validSlot(slot uint8) bool {
	return slot >= minSlot && slot <= maxSlot
}
