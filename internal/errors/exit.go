package errors

// Exit statuses follow the BSD sysexits conventions.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 64 // EX_USAGE
	ExitDataErr     = 65 // EX_DATAERR
	ExitNoInput     = 66 // EX_NOINPUT
	ExitNoPerm      = 77 // EX_NOPERM
	ExitConfigError = 78 // EX_CONFIG
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch TypeOf(err) {
	case ErrTypeNotFound:
		return ExitNoInput
	case ErrTypeParsing:
		return ExitDataErr
	case ErrTypeValidation:
		return ExitUsage
	case ErrTypePermission:
		return ExitNoPerm
	case ErrTypeConfig:
		return ExitConfigError
	default:
		return ExitFailure
	}
}
