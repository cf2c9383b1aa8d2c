package utils

import "encoding/binary"

// Uint16FromBytesLE converts two little endian bytes to a uint16.
func Uint16FromBytesLE(bytes []byte) uint16 {
	return binary.LittleEndian.Uint16(bytes)
}

// Uint16FromBytesBE converts two big endian bytes to a uint16.
func Uint16FromBytesBE(bytes []byte) uint16 {
	return binary.BigEndian.Uint16(bytes)
}

