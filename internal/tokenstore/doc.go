// Package tokenstore persists the single credential of a local eclipse installation,
// either as a JSON file replaced atomically or as an item in the OS keychain.
package tokenstore
