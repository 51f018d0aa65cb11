// Package common holds small helpers shared by the client packages.
package common

// WipeByteArray overwrites b with zeros. Used for passphrases once they
// have been handed to the keystore.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
