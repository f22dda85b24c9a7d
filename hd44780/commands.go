package hd44780

// Instructions
const (
	CmdClear              = 0x01
	CmdHome               = 0x02
	CmdEntryIncrement     = 0x06
	CmdDisplayOnCursorOff = 0x0C
	CmdDisplayOnCursorOn  = 0x0E
	CmdDisplayOnBlink     = 0x0F
	CmdFunction4Bit1Line  = 0x20
	CmdFunction4Bit2Line  = 0x28
	CmdSetDDRAM           = 0x80
)

// Backpack pins
const (
	pinRS        = 1 << 0
	pinRW        = 1 << 1
	pinEN        = 1 << 2
	pinBacklight = 1 << 3
)

// DDRAM address of the first column of each row on a 4x20 panel.
var rowOffsets = [4]uint8{0x00, 0x40, 0x14, 0x54}
