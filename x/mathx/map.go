package mathx

// MapU16 maps x in [inMin,inMax] to [outMin,outMax] with 32-bit intermediates.
// Inputs outside the range are clamped to the output bounds.
func MapU16(x, inMin, inMax, outMin, outMax uint16) uint16 {
	if inMax <= inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	num := uint32(x-inMin) * uint32(outMax-outMin)
	return uint16(uint32(outMin) + num/uint32(inMax-inMin))
}
