package alert

// Sender dispatches one rendered digest. Implementations report delivery as a
// boolean and never propagate transport errors.
type Sender interface {
	Send(subject, body string) bool
}
