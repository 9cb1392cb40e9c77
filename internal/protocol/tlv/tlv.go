package tlv

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	TagLen    = 3
	LengthLen = 3
	HeaderLen = TagLen + LengthLen

	// MaxValueLen is the largest value a 3-digit length prefix can declare.
	MaxValueLen = 999
)

var (
	ErrValueTooLong = errors.New("tlv: value too long")
	ErrInvalidTag   = errors.New("tlv: invalid tag")
)

// Field is one decoded TLV field.
type Field struct {
	Tag   string
	Value string
}

// EncodeField renders tag || LEN(3, zero padded) || value.
func EncodeField(tag, value string) ([]byte, error) {
	if !isDigits(tag) || len(tag) != TagLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if len(value) > MaxValueLen {
		return nil, fmt.Errorf("%w: tag=%s len=%d max=%d", ErrValueTooLong, tag, len(value), MaxValueLen)
	}
	buf := make([]byte, 0, HeaderLen+len(value))
	buf = append(buf, tag...)
	buf = append(buf, fmt.Sprintf("%03d", len(value))...)
	buf = append(buf, value...)
	return buf, nil
}

// EncodeFields concatenates fields in order.
func EncodeFields(fields []Field) ([]byte, error) {
	out := make([]byte, 0)
	for _, f := range fields {
		b, err := EncodeField(f.Tag, f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// SplitFields scans payload left to right and returns every complete field.
// Scanning stops without error at the first short header, non-decimal
// length, or declared length past the end of payload; terminals pad and
// truncate their responses, so trailing bytes are dropped.
func SplitFields(payload []byte) []Field {
	fields := make([]Field, 0, 8)
	i := 0
	for len(payload)-i >= HeaderLen {
		tag := string(payload[i : i+TagLen])
		rawLen := payload[i+TagLen : i+HeaderLen]
		if !isDigits(string(rawLen)) {
			break
		}
		l, err := strconv.Atoi(string(rawLen))
		if err != nil {
			break
		}
		i += HeaderLen
		if l > len(payload)-i {
			break
		}
		fields = append(fields, Field{Tag: tag, Value: string(payload[i : i+l])})
		i += l
	}
	return fields
}

// GetField returns the last field carrying tag.
func GetField(fields []Field, tag string) (Field, bool) {
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Tag == tag {
			return fields[i], true
		}
	}
	return Field{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
