package bmp280

const (
	Address          = 0x76 // I2C address with SDO tied to ground
	AlternateAddress = 0x77 // I2C address with SDO tied to VCC

	ChipID = 0x58 // value of the ID register on a BMP280
)

const (
	RegDigT1     = 0x88 // T1 calibration word, LSB first
	RegDigT2     = 0x8A // T2 calibration word, LSB first
	RegDigT3     = 0x8C // T3 calibration word, LSB first
	RegChipID    = 0xD0 // chip identification number
	RegVersion   = 0xD1
	RegSoftReset = 0xE0
	RegStatus    = 0xF3
	RegControl   = 0xF4 // ctrl_meas: osrs_t, osrs_p, mode
	RegConfig    = 0xF5 // config: t_sb, filter, spi3w_en
	RegTempData  = 0xFA // temp_msb, temp_lsb, temp_xlsb

	SoftResetCode = 0xB6
)

const (
	samplingMask  = 0xE0
	samplingShift = 5
	modeMask      = 0x03
	modeShift     = 0
	filterMask    = 0x1C
	filterShift   = 2
	standbyMask   = 0xE0
	standbyShift  = 5
)
