//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

int isAppActive() {
    return [NSApp isActive] ? 1 : 0;
}

void activateApp() {
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"

// IsAppActive returns true if the application is currently focused
func IsAppActive() bool {
	return C.isAppActive() == 1
}

// ActivateApp brings the application in front of other windows so an alert
// window is not hidden behind them.
func ActivateApp() {
	C.activateApp()
}
