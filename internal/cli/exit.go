package cli

// Exit codes returned through ExitError.
const (
	ExitFailure        = 1
	ExitPartialFailure = 2
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}
