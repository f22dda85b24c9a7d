package pcf8523

const (
	Address           = 0x68 // I2C address for PCF8523
	Control1          = 0x00 // Control and status register 1
	Control2          = 0x01 // Control and status register 2
	Control3          = 0x02 // Control and status register 3
	Time              = 0x03 // Time registers starting with seconds
	Status            = 0x03 // Status register, also holds seconds
	Offset            = 0x0E // Offset register
	ClkOutControl     = 0x0F // Timer and CLKOUT control register
	TimerBFreqControl = 0x12 // Timer B source clock frequency control
	TimerBValue       = 0x13 // Timer B value (number clock periods)
)

const (
	control1Stop     = 1 << 5 // RTC time circuits frozen
	control1Hour12   = 1 << 3 // 12-hour mode
	control1Keep     = 0b1000_0111
	secondsOscStop   = 1 << 7 // OS flag: clock integrity not guaranteed
	hoursPM          = 1 << 5 // AMPM bit in 12-hour mode
	control3PowerMgt = 0b1110_0000
)
