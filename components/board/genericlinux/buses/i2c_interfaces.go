// Package buses offers the I2C bus contract for generic Linux systems.
package buses

import (
	"context"
)

// I2C represents a shareable I2C bus on the board.
type I2C interface {
	// OpenHandle locks the bus and returns a handle interface that MUST be closed when done.
	// You cannot have 2 open for the same addr.
	OpenHandle(addr byte) (I2CHandle, error)
}

// I2CHandle is similar to an io handle. It MUST be closed to release the bus.
type I2CHandle interface {
	// Write issues one addressed write transaction.
	Write(ctx context.Context, tx []byte) error
	// Read issues one addressed read transaction of count bytes. Implementations may return
	// fewer bytes than requested; callers validate the length.
	Read(ctx context.Context, count int) ([]byte, error)
	// WriteRead writes tx and then reads count bytes in a single bus transaction, using a
	// repeated start so the bus is not released between the two.
	WriteRead(ctx context.Context, tx []byte, count int) ([]byte, error)

	// Close closes the handle and releases the lock on the bus.
	Close() error
}
