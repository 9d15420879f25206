package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ScalarKind identifies which JSON primitive a Scalar holds.
type ScalarKind uint8

const (
	KindAbsent ScalarKind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

func (k ScalarKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Scalar is a loosely typed JSON primitive. The zero value is an absent field.
// A JSON number too large for float64 is kept as ±Inf with its literal in str,
// so it reaches validation as a row error instead of failing the decode.
type Scalar struct {
	kind ScalarKind
	str  string
	num  float64
	b    bool
}

func StringScalar(v string) Scalar { return Scalar{kind: KindString, str: v} }

func NumberScalar(v float64) Scalar { return Scalar{kind: KindNumber, num: v} }

func BoolScalar(v bool) Scalar { return Scalar{kind: KindBool, b: v} }

func NullScalar() Scalar { return Scalar{kind: KindNull} }

func (s Scalar) Kind() ScalarKind { return s.kind }

// IsZero reports whether the field was absent. Used by the omitzero tag.
func (s Scalar) IsZero() bool { return s.kind == KindAbsent }

// String renders the value the way it would appear in a CSV cell.
func (s Scalar) String() string {
	switch s.kind {
	case KindString:
		return s.str
	case KindNumber:
		if s.str != "" {
			return s.str
		}
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.b)
	default:
		return ""
	}
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case 'n':
		*s = NullScalar()
		return nil
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = StringScalar(v)
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = BoolScalar(v)
		return nil
	case '{', '[':
		return fmt.Errorf("expected a string, number or boolean")
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if errors.Is(err, strconv.ErrRange) {
			*s = Scalar{kind: KindNumber, num: v, str: string(data)}
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid number %s", data)
		}
		*s = NumberScalar(v)
		return nil
	}
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindString:
		return json.Marshal(s.str)
	case KindNumber:
		if s.str != "" {
			return []byte(s.str), nil
		}
		return json.Marshal(s.num)
	case KindBool:
		return json.Marshal(s.b)
	default:
		return []byte("null"), nil
	}
}
