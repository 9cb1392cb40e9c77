package protocol

import (
	"sort"

	"github.com/danmuck/tkpay/internal/pan"
	"github.com/danmuck/tkpay/internal/protocol/tlv"
)

// Fields is a decoded response keyed by tag.
type Fields map[string]string

// Decode parses a terminal response. Malformed trailing data is dropped, a
// repeated tag keeps its last value, and the card number is masked before it
// is stored so the raw PAN is never reachable from the result.
func Decode(buf []byte) Fields {
	out := make(Fields)
	for _, f := range tlv.SplitFields(buf) {
		value := f.Value
		if f.Tag == TagCardNumber {
			value = pan.Mask(value)
		}
		out[f.Tag] = value
	}
	return out
}

func (f Fields) Get(tag string) (string, bool) {
	v, ok := f[tag]
	return v, ok
}

// Value returns the value for tag or "" when absent.
func (f Fields) Value(tag string) string {
	return f[tag]
}

// Tags lists the present tags by name, for logging.
func (f Fields) Tags() []string {
	out := make([]string, 0, len(f))
	for tag := range f {
		out = append(out, TagName(tag))
	}
	sort.Strings(out)
	return out
}
