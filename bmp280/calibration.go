package bmp280

// Calibration holds the factory temperature trimming words. They are read once after the identity check and never
// change for the life of the power cycle.
type Calibration struct {
	T1 uint16
	T2 int16
	T3 int16
}

// Compensate converts a 20-bit raw temperature sample into hundredths of a degree Celsius using the integer
// algorithm from the datasheet (section 3.11.3). No floating point is involved, so results match the vendor's
// reference implementation exactly.
func (cal Calibration) Compensate(raw int32) int32 {
	t1 := int32(cal.T1)
	t2 := int32(cal.T2)
	t3 := int32(cal.T3)

	var1 := (((raw >> 3) - (t1 << 1)) * t2) >> 11
	var2 := (((((raw >> 4) - t1) * ((raw >> 4) - t1)) >> 12) * t3) >> 14
	tFine := var1 + var2
	return (tFine*5 + 128) >> 8
}

// RawTemperature assembles the temp_msb, temp_lsb and temp_xlsb registers into a 20-bit sample.
func RawTemperature(b [3]byte) int32 {
	return int32(b[0])<<12 | int32(b[1])<<4 | int32(b[2]&0x0F)
}
