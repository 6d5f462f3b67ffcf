// Package dispatch implements emailing an inscription's entry form to the
// organizer and recording the outcome. One call to Send produces exactly
// one dispatch record, whether the provider accepted the message or not.
package dispatch
