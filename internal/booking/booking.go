// Package booking is the table-booking confirmation used by the CLI and the
// demo workflow.
package booking

import (
	"fmt"
	"strings"

	"github.com/ggoodman/elicit/elicitation"
)

// Source identifies booking requests in logs and prompts.
const Source = "booking"

// Reservation describes the table being booked.
type Reservation struct {
	Party int    `json:"party"`
	When  string `json:"when"`
}

// Answer is the decoded form of an accepted confirmation.
type Answer struct {
	Confirm bool   `json:"confirm"`
	Notes   string `json:"notes"`
}

var schema = elicitation.NewBuilder().
	Boolean("confirm", elicitation.Required(), elicitation.Title("Confirm booking")).
	Text("notes", elicitation.Default(""), elicitation.Title("Notes"), elicitation.Description("Anything the restaurant should know")).
	MustBuild()

// Schema returns the confirmation schema.
func Schema() *elicitation.Schema { return schema }

// Message renders the question for r.
func Message(r Reservation) string {
	people := "people"
	if r.Party == 1 {
		people = "person"
	}
	return fmt.Sprintf("Confirm booking for %d %s on %s?", r.Party, people, r.When)
}

// Outcome renders the result of a confirmation.
func Outcome(res elicitation.Result) string {
	return elicitation.Match(res,
		func(a elicitation.Accepted) string {
			var ans Answer
			if err := a.Decode(&ans); err != nil || !ans.Confirm {
				return "Booking not confirmed."
			}
			if notes := strings.TrimSpace(ans.Notes); notes != "" {
				return fmt.Sprintf("Booking confirmed. Notes: %s", notes)
			}
			return "Booking confirmed."
		},
		func() string { return "Booking declined." },
		func() string { return "Booking cancelled." },
	)
}
