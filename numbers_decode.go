package simdtape

import (
	"math"
	"strconv"
)

// Component I (spec.md section 4.I): number decoder.
//
// The integer path (overflow decisions, the INT64_MAX/UINT64_MAX split
// between tags 'l' and 'u') is implemented exactly as spec.md
// describes. The float path keeps the fast direct-multiply path for
// the "safe" range (Clinger's theorem: an integer significand under
// 2^53 times an exactly-representable power of ten up to 10^22 rounds
// correctly via plain float64 arithmetic) and otherwise falls back to
// strconv.ParseFloat on the exact digit text -- the "portable
// decimal-to-double fallback" spec.md explicitly permits ("On total
// fallback failure of the SIMD path, a portable decimal-to-double
// fallback is permitted"). No pack example ships a correctly-rounded
// decimal<->binary64 library, and strconv.ParseFloat already performs
// an equivalent correctly-rounded conversion, so reaching for the
// standard library here duplicates no available third-party behavior.
var pow10 = [23]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

// decodeNumber parses the JSON number starting at buf[0] (buf is
// buf_full[idx:]) and writes the resulting tape word(s). idx is only
// used for error reporting.
func decodeNumber(buf []byte, b *tapeBuilder, idx int) error {
	i := 0
	negative := false
	if i < len(buf) && buf[i] == '-' {
		negative = true
		i++
	}
	if i >= len(buf) || !isDigitByte(buf[i]) {
		return errAt(StatusNumberError, idx)
	}

	var significand uint64
	digitCount := 0

	accumulate := func(d byte) {
		if digitCount < 19 {
			significand = significand*10 + uint64(d-'0')
		}
		digitCount++
	}

	// Integer part: either a lone '0', or [1-9][0-9]*. No other leading
	// zeros are permitted (spec.md section 4.I grammar).
	if buf[i] == '0' {
		accumulate('0')
		i++
	} else {
		for i < len(buf) && isDigitByte(buf[i]) {
			accumulate(buf[i])
			i++
		}
	}

	isFloat := false
	exponent := 0

	if i < len(buf) && buf[i] == '.' {
		isFloat = true
		i++
		if i >= len(buf) || !isDigitByte(buf[i]) {
			return errAt(StatusNumberError, idx)
		}
		for i < len(buf) && isDigitByte(buf[i]) {
			accumulate(buf[i])
			exponent--
			i++
		}
	}

	if i < len(buf) && (buf[i] == 'e' || buf[i] == 'E') {
		isFloat = true
		i++
		expNeg := false
		if i < len(buf) && (buf[i] == '+' || buf[i] == '-') {
			expNeg = buf[i] == '-'
			i++
		}
		if i >= len(buf) || !isDigitByte(buf[i]) {
			return errAt(StatusNumberError, idx)
		}
		explicitExp := 0
		for i < len(buf) && isDigitByte(buf[i]) {
			if explicitExp < 100000 {
				explicitExp = explicitExp*10 + int(buf[i]-'0')
			}
			i++
		}
		if expNeg {
			explicitExp = -explicitExp
		}
		exponent += explicitExp
	}

	if i >= len(buf) || !isValidFollowByte(buf[i]) {
		return errAt(StatusNumberError, idx)
	}

	if !isFloat {
		if digitCount > 20 || (digitCount == 20 && negative) {
			return errAt(StatusNumberError, idx)
		}
		if digitCount == 20 {
			// Always above INT64_MAX; valid only if it fits in uint64.
			u, err := strconv.ParseUint(string(buf[:i]), 10, 64)
			if err != nil {
				return errAt(StatusNumberError, idx)
			}
			b.writeTapeValue(TagUint, u)
			return nil
		}
		if digitCount == 19 {
			if negative {
				if significand > uint64(math.MaxInt64)+1 {
					return errAt(StatusNumberError, idx)
				}
			} else if significand > math.MaxInt64 {
				b.writeTapeValue(TagUint, significand)
				return nil
			}
		}
		var val uint64
		if negative {
			val = uint64(-int64(significand))
		} else {
			val = significand
		}
		b.writeTapeValue(TagInteger, val)
		return nil
	}

	d, err := decodeFloat(buf[:i], significand, digitCount, exponent)
	if err != nil {
		return errAt(StatusNumberError, idx)
	}
	if negative {
		d = -d
	}
	b.writeTapeValue(TagFloat, math.Float64bits(d))
	return nil
}

// decodeFloat converts the unsigned magnitude described by significand/
// digitCount/exponent into a float64. text is the exact number text
// (sans sign), used only by the fallback path.
func decodeFloat(text []byte, significand uint64, digitCount, exponent int) (float64, error) {
	if digitCount <= 15 && exponent >= -22 && exponent <= 22 {
		v := float64(significand)
		if exponent >= 0 {
			v *= pow10[exponent]
		} else {
			v /= pow10[-exponent]
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errStatus(StatusNumberError)
	}
	return v, nil
}
