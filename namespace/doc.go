// Package namespace persists the fingerprint namespace shared by every instance of
// a deployment.
//
// All instances must derive fingerprints in the same namespace, or tokens issued by
// one instance will not decode on another. [Provision] generates the namespace once
// and stores it with a set-if-absent write, so concurrent first starts converge on a
// single value.
package namespace
