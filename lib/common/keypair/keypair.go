//
// Encapsulate Stellar's keypair package
//
// Provides additional wrapper and convenience functions,
// suited for usage within conclave
//
package keypair

import (
	stellar "github.com/stellar/go/keypair"
)

// Aliases to stellar types
type Full = stellar.Full
type KP = stellar.KP

// Aliases to stellar functions
var Master = stellar.Master
var Parse = stellar.Parse
var RandomCanFail = stellar.Random

// Random generates a new keypair and panics if the underlying entropy
// source fails.
func Random() *Full {
	kp, err := stellar.Random()
	if err != nil {
		panic(err)
	}
	return kp
}
