// Package platform holds process hardening that differs per OS.
package platform
