package ai

// CallState is the per-call bookkeeping adapters embed to satisfy
// Provider.LastUsage and Provider.LastError.
type CallState struct {
	usage    Usage
	hasUsage bool
	err      error
}

// Begin clears the previous call's usage and error.
func (s *CallState) Begin() {
	*s = CallState{}
}

// RecordUsage replaces the usage of the current call.
func (s *CallState) RecordUsage(u Usage) {
	s.usage = u
	s.hasUsage = true
}

// Fail stores err and returns its text form.
func (s *CallState) Fail(err error) string {
	s.err = err
	return ErrorText(err)
}

// LastUsage returns the usage recorded by the most recent call.
func (s *CallState) LastUsage() (Usage, bool) {
	return s.usage, s.hasUsage
}

// LastError returns the error stored by the most recent call.
func (s *CallState) LastError() error {
	return s.err
}
