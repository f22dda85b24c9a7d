package civil

// DecToBCD converts 0-99 to packed BCD.
func DecToBCD(dec uint8) uint8 {
	return dec + 6*(dec/10)
}

// BCDToDec converts packed BCD to binary.
func BCDToDec(bcd uint8) uint8 {
	return bcd - 6*(bcd>>4)
}

// ValidBCD reports whether both nibbles of b are decimal digits.
func ValidBCD(b uint8) bool {
	return b&0x0F <= 9 && b>>4 <= 9
}

// FromBCD decodes every numeric field of a BCD encoded DateTime. ok is false when a field is not valid BCD.
func (d DateTime) FromBCD() (DateTime, bool) {
	fields := []*uint8{&d.Hour, &d.Minute, &d.Second, &d.Day, &d.Month, &d.Year}
	for _, f := range fields {
		if !ValidBCD(*f) {
			return d, false
		}
		*f = BCDToDec(*f)
	}
	return d, true
}
