//go:build !darwin

// Package platform wraps the few native calls the tray app needs.
package platform

// SetActivationPolicy is a no-op outside macOS
func SetActivationPolicy() {}

// IsAppActive always returns true on non-macOS platforms
func IsAppActive() bool {
	return true
}

// ActivateApp is a no-op on non-macOS platforms
func ActivateApp() {}
