// Package conv formats sensor values for the console without fmt or strconv,
// which keeps the firmware image small. All helpers append to a caller buffer.
package conv

import "math"

// AppendInt appends the base-10 representation of n.
func AppendInt(buf []byte, n int64) []byte {
	var tmp [20]byte
	i := len(tmp)
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	if u == 0 {
		i--
		tmp[i] = '0'
	}
	for u > 0 {
		i--
		tmp[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	return append(buf, tmp[i:]...)
}

// AppendCenti appends a ×100 fixed-point value as "<int>.<2 digits>".
// -1234 renders as "-12.34", 5 as "0.05".
func AppendCenti(buf []byte, v int32) []byte {
	n := int64(v)
	if n < 0 {
		buf = append(buf, '-')
		n = -n
	}
	buf = AppendInt(buf, n/100)
	frac := n % 100
	return append(buf, '.', byte('0'+frac/10), byte('0'+frac%10))
}

// AppendFloat2 appends f with two decimals, truncated toward zero.
// NaN renders as "ERR", matching the per-sample console output for a failed read.
func AppendFloat2(buf []byte, f float32) []byte {
	switch {
	case f != f:
		return append(buf, "ERR"...)
	case math.IsInf(float64(f), 0):
		if f < 0 {
			buf = append(buf, '-')
		}
		return append(buf, "Inf"...)
	}
	c := float64(f) * 100
	if c > math.MaxInt32 || c < math.MinInt32 {
		return AppendInt(buf, int64(f))
	}
	return AppendCenti(buf, int32(c))
}

const hexDigits = "0123456789ABCDEF"

// AppendHex8 appends "0x" plus two upper-case hex digits.
func AppendHex8(buf []byte, b uint8) []byte {
	return append(buf, '0', 'x', hexDigits[b>>4], hexDigits[b&0x0F])
}
