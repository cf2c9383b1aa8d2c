// Package inject provides dependency injected structures for testing the driver against a bus
// that is not there.
package inject

import (
	"context"

	"go.viam.com/tfmini/components/board/genericlinux/buses"
)

// I2C is an injected I2C.
type I2C struct {
	buses.I2C
	OpenHandleFunc func(addr byte) (buses.I2CHandle, error)
}

// OpenHandle calls the injected OpenHandle or the real version.
func (s *I2C) OpenHandle(addr byte) (buses.I2CHandle, error) {
	if s.OpenHandleFunc == nil {
		return s.I2C.OpenHandle(addr)
	}
	return s.OpenHandleFunc(addr)
}

// I2CHandle is an injected connection to an I2C bus.
type I2CHandle struct {
	buses.I2CHandle
	WriteFunc     func(ctx context.Context, tx []byte) error
	ReadFunc      func(ctx context.Context, count int) ([]byte, error)
	WriteReadFunc func(ctx context.Context, tx []byte, count int) ([]byte, error)
	CloseFunc     func() error
}

// Write calls the injected WriteFunc or the real version.
func (s *I2CHandle) Write(ctx context.Context, tx []byte) error {
	if s.WriteFunc == nil {
		return s.I2CHandle.Write(ctx, tx)
	}
	return s.WriteFunc(ctx, tx)
}

// Read calls the injected ReadFunc or the real version.
func (s *I2CHandle) Read(ctx context.Context, count int) ([]byte, error) {
	if s.ReadFunc == nil {
		return s.I2CHandle.Read(ctx, count)
	}
	return s.ReadFunc(ctx, count)
}

// WriteRead calls the injected WriteReadFunc or the real version.
func (s *I2CHandle) WriteRead(ctx context.Context, tx []byte, count int) ([]byte, error) {
	if s.WriteReadFunc == nil {
		return s.I2CHandle.WriteRead(ctx, tx, count)
	}
	return s.WriteReadFunc(ctx, tx, count)
}

// Close calls the injected CloseFunc or the real version.
func (s *I2CHandle) Close() error {
	if s.CloseFunc == nil {
		return s.I2CHandle.Close()
	}
	return s.CloseFunc()
}
