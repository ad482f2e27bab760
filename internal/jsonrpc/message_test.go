package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ggoodman/elicit/elicitation"
)

func TestMessage_Kind(t *testing.T) {
	cases := map[string]Kind{
		`{"jsonrpc":"2.0","method":"elicitation/create","id":1,"params":{}}`:     KindRequest,
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{}}`:        KindNotification,
		`{"jsonrpc":"2.0","id":"a","result":{"action":"decline"}}`:                KindResponse,
		`{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse"}}`:   KindResponse,
	}
	for doc, want := range cases {
		var m Message
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", doc, err)
		}
		if got := m.Kind(); got != want {
			t.Fatalf("Kind(%s) = %d, want %d", doc, got, want)
		}
	}
}

func TestMessage_Rejects(t *testing.T) {
	for _, doc := range []string{
		`{"jsonrpc":"1.0","method":"x"}`,
		`{"jsonrpc":"2.0","method":"x","result":{}}`,
		`{"jsonrpc":"2.0","id":1}`,
		`{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"m"}}`,
		`{"jsonrpc":"2.0","id":1.5,"method":"x"}`,
	} {
		var m Message
		if err := json.Unmarshal([]byte(doc), &m); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}

func TestID_RoundTrip(t *testing.T) {
	for _, id := range []*ID{StringID("abc"), StringID("7"), NumberID(12), NumberID(-3)} {
		b, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back ID
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back != *id {
			t.Fatalf("round trip %s -> %s -> %+v", id, b, back)
		}
	}
	if string(must(json.Marshal(StringID("7")))) != `"7"` || string(must(json.Marshal(NumberID(7)))) != `7` {
		t.Fatal("string and number ids must keep their JSON type")
	}
}

func TestErrorResponse_NullID(t *testing.T) {
	b := must(json.Marshal(NewError(nil, ErrorCodeParseError, "bad json")))
	want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"bad json"}}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestNewNotification(t *testing.T) {
	n, err := NewNotification(MethodCancelled, CancelledParams{RequestID: "1"})
	if err != nil {
		t.Fatalf("NewNotification: %v", err)
	}
	want := `{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":"1"}}`
	if b := must(json.Marshal(n)); string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestErrorFor(t *testing.T) {
	m := ErrorFor(NumberID(1), invalidParams("bad schema"))
	if m.Error.Code != ErrorCodeInvalidParams {
		t.Fatalf("expected invalid params, got %d", m.Error.Code)
	}
	m = ErrorFor(NumberID(1), errors.New("terminal gone"))
	if m.Error.Code != ErrorCodeInternalError || m.Error.Message != "terminal gone" {
		t.Fatalf("unexpected error %+v", m.Error)
	}
}

func TestCreateParams(t *testing.T) {
	sch := elicitation.NewBuilder().Boolean("confirm", elicitation.Required()).MustBuild()
	req, err := NewRequest(NumberID(1), MethodElicitationCreate, CreateParams{Message: "ok?", RequestedSchema: sch, RequestID: "r1"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	var m Message
	if err := json.Unmarshal(must(json.Marshal(req)), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, err := m.CreateParams()
	if err != nil {
		t.Fatalf("CreateParams: %v", err)
	}
	r := p.Request()
	if r.ID != "r1" || r.Message != "ok?" || r.Schema.Fingerprint() != sch.Fingerprint() {
		t.Fatalf("unexpected request %+v", r)
	}
}

func TestCreateParams_InvalidParams(t *testing.T) {
	for name, params := range map[string]string{
		"missing schema": `{"message":"x"}`,
		"composite":      `{"message":"x","requestedSchema":{"type":"object","properties":{"tags":{"type":"array"}}}}`,
		"not an object":  `[1,2]`,
	} {
		m := Message{Version: Version, ID: NumberID(1), Method: MethodElicitationCreate, Params: json.RawMessage(params)}
		_, err := m.CreateParams()
		var rpcErr *Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != ErrorCodeInvalidParams {
			t.Fatalf("%s: expected invalid params, got %v", name, err)
		}
	}
}

func TestCreateResult(t *testing.T) {
	ok := must(NewResult(NumberID(1), elicitation.Response{Action: elicitation.ActionDecline}))
	resp, err := ok.CreateResult()
	if err != nil || resp.Action != elicitation.ActionDecline {
		t.Fatalf("got %+v, %v", resp, err)
	}
	_, err = NewError(NumberID(1), ErrorCodeInternalError, "boom").CreateResult()
	var rpcErr *Error
	if !errors.As(err, &rpcErr) || rpcErr.Message != "boom" {
		t.Fatalf("expected peer error, got %v", err)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
