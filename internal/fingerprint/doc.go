// Package fingerprint folds weakly stable host attributes (host name,
// processor description, a platform hardware id) into a single digest that
// can stand in for a passphrase when credentials are bound to a machine.
//
// A fingerprint is not a secret with guaranteed entropy. Anyone able to run
// code on the host can recompute it, so machine binding keeps credentials
// off casual disk copies and nothing more.
//
// Providers never fail. Signals that cannot be read (missing tool,
// permission denied, unsupported OS) are skipped and reported in
// Fingerprint.Missing; the digest then covers only what was collected.
package fingerprint
