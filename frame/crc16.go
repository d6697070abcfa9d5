package frame

// CRC16 is CRC-16/MCRF4XX (reflected CCITT, init 0xFFFF, no final xor),
// the checksum of the Klipper serial protocol.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crcByte(crc, b)
	}
	return crc
}

func crcByte(crc uint16, b byte) uint16 {
	b ^= uint8(crc & 0xFF)
	b ^= b << 4
	b16 := uint16(b)
	return (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
}
