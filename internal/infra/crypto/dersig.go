package crypto

import (
	"errors"
	"fmt"
)

// ES256 signatures are over P-256, so r and s each occupy one 32-byte
// field element in the fixed-width encoding.
const es256FieldSize = 32

var (
	ErrNotASequence      = errors.New("not a DER SEQUENCE")
	ErrTruncated         = errors.New("truncated DER value")
	ErrUnsupportedLength = errors.New("unsupported DER length encoding")
	ErrIntegerTooLarge   = errors.New("integer exceeds curve field size")
)

// DERToP1363ES256 converts a DER-encoded ECDSA signature
// (SEQUENCE { INTEGER r, INTEGER s }) into its 64-byte P1363 form:
// big-endian r and s, each zero-padded to 32 bytes, concatenated. Hardware
// signers return DER; the embedding protocol's ES256 scheme consumes P1363.
func DERToP1363ES256(der []byte) ([]byte, error) {
	// Minimum encoding: 30 06 02 01 <r> 02 01 <s>
	if len(der) < 8 || der[0] != 0x30 {
		return nil, ErrNotASequence
	}

	seqLen, consumed, err := parseDERLength(der[1:])
	if err != nil {
		return nil, fmt.Errorf("sequence length: %w", err)
	}
	body := der[1+consumed:]
	if len(body) < seqLen {
		return nil, fmt.Errorf("%w: sequence body", ErrTruncated)
	}
	body = body[:seqLen]

	r, rest, err := parseDERInteger(body, "r")
	if err != nil {
		return nil, err
	}
	s, _, err := parseDERInteger(rest, "s")
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2*es256FieldSize)
	rFixed, err := intToFixed(r, es256FieldSize)
	if err != nil {
		return nil, fmt.Errorf("r: %w", err)
	}
	sFixed, err := intToFixed(s, es256FieldSize)
	if err != nil {
		return nil, fmt.Errorf("s: %w", err)
	}
	out = append(out, rFixed...)
	out = append(out, sFixed...)
	return out, nil
}

// parseDERLength reads a DER length field and returns the length value and
// the number of bytes consumed. Short form and long form with up to two
// length bytes are accepted; anything longer is rejected.
func parseDERLength(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty length", ErrTruncated)
	}
	switch {
	case data[0] < 0x80:
		return int(data[0]), 1, nil
	case data[0] == 0x81:
		if len(data) < 2 {
			return 0, 0, fmt.Errorf("%w: length", ErrTruncated)
		}
		return int(data[1]), 2, nil
	case data[0] == 0x82:
		if len(data) < 3 {
			return 0, 0, fmt.Errorf("%w: length", ErrTruncated)
		}
		return int(data[1])<<8 | int(data[2]), 3, nil
	default:
		return 0, 0, ErrUnsupportedLength
	}
}

// parseDERInteger reads one INTEGER field and returns its content bytes
// plus the remainder of the buffer.
func parseDERInteger(data []byte, name string) ([]byte, []byte, error) {
	if len(data) == 0 || data[0] != 0x02 {
		return nil, nil, fmt.Errorf("expected INTEGER tag for %s", name)
	}
	length, consumed, err := parseDERLength(data[1:])
	if err != nil {
		return nil, nil, fmt.Errorf("%s length: %w", name, err)
	}
	start := 1 + consumed
	if len(data) < start+length {
		return nil, nil, fmt.Errorf("%w: %s", ErrTruncated, name)
	}
	return data[start : start+length], data[start+length:], nil
}

// intToFixed strips the leading zero padding DER inserts to keep positive
// values positive, then left-pads the remainder to size bytes.
func intToFixed(value []byte, size int) ([]byte, error) {
	stripped := value
	for len(stripped) > 0 && stripped[0] == 0 {
		stripped = stripped[1:]
	}
	if len(stripped) > size {
		return nil, fmt.Errorf("%w: %d bytes, expected <= %d", ErrIntegerTooLarge, len(stripped), size)
	}
	out := make([]byte, size)
	copy(out[size-len(stripped):], stripped)
	return out, nil
}
