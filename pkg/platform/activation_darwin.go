//go:build darwin

// Package platform wraps the few native calls the tray app needs.
package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

int
SetActivationPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
    return 0;
}
*/
import "C"
import "log/slog"

// SetActivationPolicy hides the dock icon so the notifier lives in the menu bar only
func SetActivationPolicy() {
	slog.Debug("Setting accessory activation policy")
	C.SetActivationPolicy()
}
