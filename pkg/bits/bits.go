// Package bits addresses the bits of a byte the way ISO 7816 and EMV tables
// do: positions run from b8, the most significant bit, down to b1.
package bits

// Bit returns the mask of position n, or 0 when n is outside 1..8.
func Bit(n uint) byte {
	if n == 0 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet reports whether position n of b is 1.
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Set returns b with position n forced to 1.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// GetRange returns the value held by positions high down to low, shifted to
// b1. GetRange(0x18, 8, 4) reads the SFI of an AFL entry and returns 3.
// An invalid range yields 0.
func GetRange(b byte, high, low uint) byte {
	if low == 0 || high > 8 || high < low {
		return 0
	}
	return (b >> (low - 1)) & byte(1<<(high-low+1)-1)
}

// BCD decodes a packed two-digit decimal byte ('59' is 59).
func BCD(b byte) (int, bool) {
	hi, lo := GetRange(b, 8, 5), GetRange(b, 4, 1)
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return int(hi)*10 + int(lo), true
}
