package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// HashCanonicalJSON computes a 64-bit hash of v that is a pure function of
// its JSON value: stable across runs, and order-independent for object
// keys. The underlying algorithm is not part of the external contract —
// only that repeated calls on an equivalent value (same content, any key
// order) agree.
func HashCanonicalJSON(v any) uint64 {
	d := xxhash.New()
	writeValue(d, v)
	return d.Sum64()
}

// HashKey builds a memoization key by appending the hex-encoded canonical
// hash of v to prefix.
func HashKey(prefix string, v any) string {
	return fmt.Sprintf("%s%016x", prefix, HashCanonicalJSON(v))
}

func writeValue(d *xxhash.Digest, v any) {
	switch val := v.(type) {
	case nil:
		d.Write([]byte{0x00})
	case string:
		d.Write([]byte(val))
	case bool:
		if val {
			d.Write([]byte{0x01})
		} else {
			d.Write([]byte{0x00})
		}
	case []any:
		for _, elem := range val {
			writeValue(d, elem)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Write([]byte(k))
			writeValue(d, val[k])
		}
	default:
		d.Write(numberBytes(v))
	}
}

// numberBytes encodes a numeric value as big-endian 8 bytes, preferring an
// unsigned integer representation, then signed integer, then IEEE-754
// double, per the canonical hash's number rule.
func numberBytes(v any) []byte {
	buf := make([]byte, 8)
	switch n := v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		binary.BigEndian.PutUint64(buf, toUint64(n))
		return buf
	case int, int8, int16, int32, int64:
		i := toInt64(n)
		if i >= 0 {
			binary.BigEndian.PutUint64(buf, uint64(i))
			return buf
		}
		binary.BigEndian.PutUint64(buf, uint64(i))
		return buf
	case float64:
		if i := int64(n); float64(i) == n {
			if i >= 0 {
				binary.BigEndian.PutUint64(buf, uint64(i))
			} else {
				binary.BigEndian.PutUint64(buf, uint64(i))
			}
			return buf
		}
		binary.BigEndian.PutUint64(buf, math.Float64bits(n))
		return buf
	case float32:
		return numberBytes(float64(n))
	default:
		panic(fmt.Sprintf("cache: unsupported JSON value type %T", v))
	}
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint:
		return uint64(n)
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	default:
		panic(fmt.Sprintf("cache: not an unsigned integer: %T", v))
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	default:
		panic(fmt.Sprintf("cache: not a signed integer: %T", v))
	}
}
