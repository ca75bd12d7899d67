// st_constants.go - Atari ST memory map, clocks and fixed addresses

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package stsound

const (
	ST_RAM_SIZE   = 4 * 1024 * 1024
	ST_ADDR_MASK  = 0x00FFFFFF
	ST_CPU_CLOCK  = 8000000
	YM_CLOCK_ST   = 2000000
	MFP_CLOCK     = 2457600
	YM_REG_COUNT  = 16
	YM_PLAY_REGS  = 14
	DAC_REG_COUNT = 0x40

	// Device windows
	YM_BASE   = 0xFF8800
	YM_END    = 0xFF88FF
	DAC_BASE  = 0xFF8900
	DAC_END   = 0xFF8925
	MFP_BASE  = 0xFFFA00
	MFP_END   = 0xFFFA25
	YM_SELECT = 0xFF8800 // write: select register, read: selected register data
	YM_DATA   = 0xFF8802 // write: data for the selected register

	// Low RAM layout
	ST_VECTOR_COUNT     = 256
	ST_RESET_TRAMPOLINE = 0x500 // RESET, marks the end of a dispatched call
	ST_RTE_TRAMPOLINE   = 0x502 // RTE, target of every unused exception vector
	ST_STACK_TOP        = 0x8000
	ST_HEAP_BASE        = 0x80000
	SNDH_LOAD_ADDR      = 0x10000

	OPCODE_RESET = 0x4E70
	OPCODE_RTE   = 0x4E73

	// Exception frame status register pushed for dispatched code
	ST_DISPATCH_SR = 0x2300

	// Core budgets
	TICK_CYCLES_DEFAULT = ST_CPU_CLOCK / 50
	IRQ_CYCLE_BUDGET    = 8192
	INIT_TIMEOUT_TICKS  = 50

	// OS call selectors
	TRAP_GEMDOS    = 1
	TRAP_XBIOS     = 14
	GEMDOS_MALLOC  = 0x48
	XBIOS_XBTIMER  = 31
	SAMPLE_MAX_S16 = 32767
	SAMPLE_MIN_S16 = -32768
)

// TimerID identifies one MFP interrupt source. The order fixes the vector table.
type TimerID int

const (
	TimerA TimerID = iota
	TimerB
	TimerC
	TimerD
	TimerGPI7
	timerCount
)

// timerVectors holds the exception vector address for each TimerID.
var timerVectors = [timerCount]uint32{0x134, 0x120, 0x114, 0x110, 0x13C}

func (id TimerID) String() string {
	switch id {
	case TimerA:
		return "A"
	case TimerB:
		return "B"
	case TimerC:
		return "C"
	case TimerD:
		return "D"
	case TimerGPI7:
		return "GPI7"
	}
	return "?"
}

// VectorAddress returns the exception vector slot serviced when the timer fires.
func (id TimerID) VectorAddress() uint32 {
	if id < 0 || id >= timerCount {
		return 0
	}
	return timerVectors[id]
}
