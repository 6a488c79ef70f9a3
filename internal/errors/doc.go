// Package errors defines the application error taxonomy.
//
// Every failure that reaches the process boundary is an *AppError carrying a
// type (NOT_FOUND, PARSING, CONFIG, ...), a message and the underlying cause.
// Callers inspect errors with IsType/TypeOf or the standard errors.Is/As, and
// the entry point converts them to an exit status with ExitCode:
//
//	table, err := dataprocessing.Load(ctx, path)
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "error: %v\n", err)
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
