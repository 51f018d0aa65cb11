// Package services holds the client's application services.
//
// SubmissionService appends one entry to the ledger and QueryService reads
// the caller's entries back. Both publish their results to a shared Store,
// which the CLI renders; the Store's entries only ever change through a
// ledger read, so an entry shows up once it is final and never before.
//
// Failures are reported as *SubmissionError and *QueryError. Both unwrap to
// one of the package's sentinel kinds and to the underlying cause:
//
//	_, err := svc.Submit(ctx, form, sess)
//	var se *services.SubmissionError
//	if errors.As(err, &se) && se.Retryable() {
//	    // network or ledger trouble, try again later
//	}
//	if errors.Is(err, services.ErrInvalid) {
//	    fmt.Println(se.Validation.Field, se.Validation.Reason)
//	}
package services
