// Package ledger binds the diary contract through go-ethereum.
//
// The contract exposes two methods:
//
//	addEntry(uint16 weightKg, uint32 steps, uint16 caloriesIn, uint16 caloriesOut, string note)
//	getMyEntries() view returns (tuple(uint256,uint16,uint32,uint16,uint16,string)[])
//
// getMyEntries is scoped to msg.sender, so reads are issued with the caller's
// address as From. Contract.WaitFinal treats a transaction as final once its
// receipt reports success and the configured number of blocks has been built
// on top of the inclusion block.
//
// Transport failures are reported as ErrUnavailable and failed receipts or
// reverted calls as ErrReverted; both can be matched with errors.Is.
package ledger
