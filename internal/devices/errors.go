package devices

import "errors"

var (
	// ErrDeviceNotFound is returned when no active device matches the lookup
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSerialTaken is returned when the serial number is already registered
	ErrSerialTaken = errors.New("serial number already registered")

	// ErrMissingSerial is returned when the serial number is empty
	ErrMissingSerial = errors.New("serial_number is required")
)
