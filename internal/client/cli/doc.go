// Package cli implements the interactive command-line client of the health
// diary.
//
// The App wires configuration, the local cache, the ledger binding and the
// signer session into the submission and query services, then runs a small
// REPL:
//
//	help            list commands
//	add             enter a new entry, authorize and submit it
//	list | l        read entries from the ledger and print them
//	show            print the entries already loaded, without a ledger read
//	status          identity, connectivity, pending submission, last error
//	exit | quit     leave; outstanding confirmations are abandoned
//
// Submissions are authorized synchronously, since the confirmation prompt
// reads from the same terminal, and confirmed in the background so the
// prompt stays usable while the ledger reaches finality.
package cli
