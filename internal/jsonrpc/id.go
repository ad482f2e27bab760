package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type idKind uint8

const (
	idNull idKind = iota
	idString
	idNumber
)

// ID is a JSON-RPC request id. Peers may use strings or integers; the zero
// ID is null, which is what a response to an unparseable request carries.
type ID struct {
	kind idKind
	str  string
	num  int64
}

// StringID returns a string id.
func StringID(s string) *ID { return &ID{kind: idString, str: s} }

// NumberID returns an integer id.
func NumberID(n int64) *ID { return &ID{kind: idNumber, num: n} }

// IsNull reports whether id is absent or null.
func (id *ID) IsNull() bool { return id == nil || id.kind == idNull }

// String returns the id in the form used to key in-flight requests and to
// name them in notifications/cancelled. Null ids render as "".
func (id *ID) String() string {
	if id == nil {
		return ""
	}
	switch id.kind {
	case idString:
		return id.str
	case idNumber:
		return strconv.FormatInt(id.num, 10)
	}
	return ""
}

func (id *ID) MarshalJSON() ([]byte, error) {
	if id == nil {
		return []byte("null"), nil
	}
	switch id.kind {
	case idString:
		return json.Marshal(id.str)
	case idNumber:
		return strconv.AppendInt(nil, id.num, 10), nil
	}
	return []byte("null"), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{kind: idString, str: s}
	default:
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("jsonrpc: id must be a string or integer, got %s", data)
		}
		*id = ID{kind: idNumber, num: n}
	}
	return nil
}
