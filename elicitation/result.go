package elicitation

import (
	"encoding/json"
	"fmt"
)

// Action is the wire tag of a Result.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
)

// ParseAction maps a wire action to an Action. Unknown values map to
// ActionCancel and ok is false.
func ParseAction(s string) (a Action, ok bool) {
	switch Action(s) {
	case ActionAccept, ActionDecline, ActionCancel:
		return Action(s), true
	}
	return ActionCancel, false
}

// Result is the outcome of one elicitation. The variants are Accepted,
// Declined and Cancelled; the set is closed.
//
//sumtype:decl
type Result interface {
	Action() Action
	isResult()
}

// Accepted carries data that has been validated against the request schema.
type Accepted struct {
	Data map[string]any
}

// Declined means the user explicitly refused to answer.
type Declined struct{}

// Cancelled means the user, the host or a timeout aborted the interaction.
type Cancelled struct{}

func (Accepted) Action() Action  { return ActionAccept }
func (Declined) Action() Action  { return ActionDecline }
func (Cancelled) Action() Action { return ActionCancel }

func (Accepted) isResult()  {}
func (Declined) isResult()  {}
func (Cancelled) isResult() {}

// Decode copies the accepted data into dst (a pointer to a struct or map)
// using its JSON tags.
func (a Accepted) Decode(dst any) error {
	b, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("elicitation: encode accepted data: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("elicitation: decode accepted data: %w", err)
	}
	return nil
}

// Match calls exactly one handler according to the variant of r and returns
// its value. A nil Result is handled as Cancelled.
func Match[T any](r Result, accepted func(Accepted) T, declined func() T, cancelled func() T) T {
	switch v := normalize(r).(type) {
	case Accepted:
		return accepted(v)
	case Declined:
		return declined()
	default:
		return cancelled()
	}
}

// normalize folds pointer variants into value variants.
func normalize(r Result) Result {
	switch v := r.(type) {
	case *Accepted:
		if v == nil {
			return Cancelled{}
		}
		return *v
	case *Declined:
		return Declined{}
	case *Cancelled:
		return Cancelled{}
	case nil:
		return Cancelled{}
	}
	return r
}

// Response is the wire form of a Result:
//
//	{"action":"accept","content":{"confirm":true}}
type Response struct {
	Action  Action         `json:"action"`
	Content map[string]any `json:"content,omitempty"`
}

// ResponseOf converts a Result to its wire form.
func ResponseOf(r Result) Response {
	return Match(r,
		func(a Accepted) Response { return Response{Action: ActionAccept, Content: a.Data} },
		func() Response { return Response{Action: ActionDecline} },
		func() Response { return Response{Action: ActionCancel} },
	)
}

// ResultOf converts a wire response to a Result. Unknown actions become
// Cancelled and content is dropped for anything but accept. The accepted
// content is not validated; see Validate.
func ResultOf(resp Response) Result {
	action, _ := ParseAction(string(resp.Action))
	switch action {
	case ActionAccept:
		data := resp.Content
		if data == nil {
			data = map[string]any{}
		}
		return Accepted{Data: data}
	case ActionDecline:
		return Declined{}
	}
	return Cancelled{}
}
