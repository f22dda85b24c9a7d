// Package deskclock holds the pieces shared by the desk clock drivers: the I2C bus abstraction every register-based
// device talks through, and the error values the devices and the boot sequence agree on.
package deskclock

// I2C represents an I2C bus. Devices take it in their constructor and never reach for a global bus.
type I2C interface {
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
	Tx(addr uint16, w, r []byte) error
}
