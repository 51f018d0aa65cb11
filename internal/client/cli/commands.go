package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/client/services"
	"github.com/dmitrijs2005/gophdiary/internal/client/session"
)

// Add prompts for an entry, has the user authorize it and broadcasts it.
// Confirmation continues in the background; the entry appears in the
// table once it is final.
func (a *App) Add(ctx context.Context) error {
	form, err := a.readForm()
	if err != nil {
		return err
	}

	ticket, err := a.submit.Begin(ctx, form, a.sess)
	if err != nil {
		a.reportSubmission(err)
		return err
	}
	printlnFn(fmt.Sprintf("Submitted %s, waiting for confirmation...", ticket.TxHash))

	a.confirmations.Add(1)
	go func() {
		defer a.confirmations.Done()
		if err := ticket.Await(ctx); err != nil {
			a.reportSubmission(err)
			return
		}
		printlnFn(okText(fmt.Sprintf("Entry confirmed (tx %s).", ticket.TxHash)))
	}()
	return nil
}

func (a *App) readForm() (models.RawForm, error) {
	var form models.RawForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Weight (kg)", &form.WeightKg},
		{"Steps", &form.Steps},
		{"Calories in", &form.CaloriesIn},
		{"Calories out", &form.CaloriesOut},
		{fmt.Sprintf("Note (up to %d characters, optional)", models.MaxNoteLength), &form.Note},
	}
	for _, f := range fields {
		v, err := GetSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return models.RawForm{}, err
		}
		*f.dst = v
	}
	return form, nil
}

// confirmAuthorization is the signer's Authorizer: it shows what is about
// to be signed and asks for consent.
func (a *App) confirmAuthorization(ctx context.Context, req session.AuthorizationRequest) (bool, error) {
	e := req.Entry
	renderStatus(a.out, [][2]string{
		{"From", req.From},
		{"Contract", req.Contract},
		{"Nonce", fmt.Sprint(req.Nonce)},
		{"Gas limit", fmt.Sprint(req.Gas)},
		{"Entry", fmt.Sprintf("%d kg, %d steps, %d/%d kcal, %q", e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note)},
	})
	return Confirm(a.reader, "Sign and send this transaction?", a.out)
}

// List reads the caller's entries from the ledger and prints them. On
// failure the last known entries are printed instead.
func (a *App) List(ctx context.Context) error {
	list, err := a.query.Refresh(ctx, a.sess)
	if err != nil {
		a.reportQuery(err)
		if errors.Is(err, services.ErrUnreachable) {
			a.setMode(ModeOffline)
			return a.Show(ctx)
		}
		return err
	}
	a.setMode(ModeOnline)
	renderEntries(a.out, list)
	return nil
}

// Show prints the entries already in the store.
func (a *App) Show(ctx context.Context) error {
	v := a.store.View()
	if v.Cached {
		printlnFn(faint("cached " + formatTime(v.RefreshedAt)))
	}
	renderEntries(a.out, v.Entries)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	v := a.store.View()

	identity := "none"
	if a.hasSigner() {
		identity = a.sess.Identity()
	}
	pending := "no"
	if v.Pending {
		pending = v.PendingTx
	}
	lastErr := "none"
	if v.LastErr != nil {
		lastErr = v.LastErr.Error()
	}

	rows := [][2]string{
		{"Identity", identity},
		{"Node", fmt.Sprintf("%s (%s)", a.config.RPCURL, a.getMode())},
		{"Contract", a.config.ContractAddress},
		{"Pending", pending},
		{"Last refresh", formatTime(v.RefreshedAt)},
		{"Last error", lastErr},
	}

	if a.hasSigner() {
		st, err := a.cache.Status(ctx, a.sess.Identity())
		if err != nil {
			a.log.Warn(ctx, "cache status failed", "error", err)
		} else {
			lastTx := st.LastTx
			if lastTx == "" {
				lastTx = "none"
			}
			rows = append(rows,
				[2]string{"Cached entries", fmt.Sprint(st.Entries)},
				[2]string{"Last tx", lastTx},
			)
			if st.PendingTx != "" && st.PendingTx != v.PendingTx {
				rows = append(rows, [2]string{"Unresolved tx", warnText(st.PendingTx + " (may have committed, run 'list')")})
			}
		}
	}

	renderStatus(a.out, rows)
	return nil
}

func (a *App) reportSubmission(err error) {
	var se *services.SubmissionError
	if !errors.As(err, &se) {
		printlnFn(errorText("Error: " + err.Error()))
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalid) && se.Validation != nil:
		printlnFn(errorText(fmt.Sprintf("Invalid %s: %s", se.Validation.Field, se.Validation.Reason)))
	case errors.Is(err, services.ErrNoSigner):
		printlnFn(errorText("No signing key available: set DIARY_PRIVATE_KEY or start with -s <keystore>."))
	case errors.Is(err, services.ErrAlreadyPending):
		printlnFn(warnText("A submission is still awaiting confirmation, try again once it completes."))
	case errors.Is(err, services.ErrRejected):
		printlnFn(warnText("Submission cancelled, nothing was sent."))
	case errors.Is(err, services.ErrAbandoned):
		printlnFn(warnText(fmt.Sprintf("Stopped waiting for %s; it may still be committed, run 'list' later.", se.TxHash)))
	case se.Retryable():
		printlnFn(errorText(fmt.Sprintf("Ledger error (you can retry): %v", se.Cause)))
	default:
		printlnFn(errorText("Error: " + err.Error()))
	}
}

func (a *App) reportQuery(err error) {
	switch {
	case errors.Is(err, services.ErrNoSigner):
		printlnFn(errorText("No signing key available: set DIARY_PRIVATE_KEY or start with -s <keystore>."))
	case errors.Is(err, services.ErrUnreachable):
		printlnFn(warnText("Could not read from the ledger, showing last known entries."))
	default:
		printlnFn(errorText("Error: " + err.Error()))
	}
}
