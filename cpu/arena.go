package cpu

// Memory map regions. The engine itself only reads the trap table; the rest
// is convention shared with the emulator and loaded programs.
const (
	TRAP_TABLE       = Word(0x0000) // Trap vector table, 256 entries.
	INTERRUPT_TABLE  = Word(0x0100) // Interrupt vector table.
	SUPERVISOR_SPACE = Word(0x0200) // Operating system and service routines.
	USER_SPACE       = Word(0x3000) // Default program origin.
	DEVICE_SPACE     = Word(0xfe00) // Device register page.
)
