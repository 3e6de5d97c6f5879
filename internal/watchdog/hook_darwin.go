//go:build darwin && cgo

package watchdog

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

CGEventRef eventCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

// Creates a listen-only tap. Returns 0 when the tap cannot be created,
// which usually means accessibility permission is missing.
static inline int createEventTap(uintptr_t refcon, CFMachPortRef *out) {
    CGEventMask mask = kCGEventMaskForAllEvents;
    CFMachPortRef tap = CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        mask,
        eventCallback,
        (void*)refcon
    );
    if (!tap) {
        return 0;
    }
    *out = tap;
    return 1;
}

static inline void runEventTap(CFMachPortRef tap) {
    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
    CGEventTapEnable(tap, true);
    CFRunLoopRun();
}
*/
import "C"
import (
	"errors"
	"os"
	"runtime"
	"runtime/cgo"
	"unsafe"
)

var ownPID = int64(os.Getpid())

//export eventCallback
func eventCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	w := cgo.Handle(uintptr(refcon)).Value().(*Watchdog)

	// Events we posted ourselves carry our pid as the source
	if int64(C.CGEventGetIntegerValueField(event, C.kCGEventSourceUnixProcessID)) == ownPID {
		return event
	}

	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		if name := macKeyNames[keyCode]; name != "" {
			w.KeyEvent(name, eventType == C.kCGEventKeyDown)
		} else {
			w.Observe()
		}

	case C.kCGEventFlagsChanged:
		flags := C.CGEventGetFlags(event)
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		switch keyCode {
		case 55, 54:
			w.KeyEvent("CMD", flags&C.kCGEventFlagMaskCommand != 0)
		case 56, 60:
			w.KeyEvent("SHIFT", flags&C.kCGEventFlagMaskShift != 0)
		case 58, 61:
			w.KeyEvent("ALT", flags&C.kCGEventFlagMaskAlternate != 0)
		case 59, 62:
			w.KeyEvent("CTRL", flags&C.kCGEventFlagMaskControl != 0)
		default:
			w.Observe()
		}

	case C.kCGEventLeftMouseDown, C.kCGEventLeftMouseUp:
		w.KeyEvent("MOUSE1", eventType == C.kCGEventLeftMouseDown)
	case C.kCGEventRightMouseDown, C.kCGEventRightMouseUp:
		w.KeyEvent("MOUSE3", eventType == C.kCGEventRightMouseDown)
	case C.kCGEventOtherMouseDown, C.kCGEventOtherMouseUp:
		w.KeyEvent("MOUSE2", eventType == C.kCGEventOtherMouseDown)

	case C.kCGEventMouseMoved, C.kCGEventLeftMouseDragged,
		C.kCGEventRightMouseDragged, C.kCGEventOtherMouseDragged,
		C.kCGEventScrollWheel:
		w.Observe()
	}

	return event
}

func (w *Watchdog) startPlatform() error {
	handle := cgo.NewHandle(w)
	started := make(chan error, 1)

	go func() {
		// The run loop belongs to this thread
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		var tap C.CFMachPortRef
		if C.createEventTap(C.uintptr_t(handle), &tap) == 0 {
			handle.Delete()
			started <- errors.New("create event tap: accessibility permission missing?")
			return
		}
		started <- nil
		C.runEventTap(tap)
	}()

	return <-started
}

var macKeyNames = map[uint16]string{
	49: "SPACE", 36: "ENTER", 53: "ESC", 48: "TAB", 51: "BACKSPACE",
	123: "LEFT", 124: "RIGHT", 125: "DOWN", 126: "UP",

	0: "A", 11: "B", 8: "C", 2: "D", 14: "E", 3: "F", 5: "G", 4: "H", 34: "I",
	38: "J", 40: "K", 37: "L", 46: "M", 45: "N", 31: "O", 35: "P", 12: "Q",
	15: "R", 1: "S", 17: "T", 32: "U", 9: "V", 13: "W", 7: "X", 16: "Y", 6: "Z",

	29: "0", 18: "1", 19: "2", 20: "3", 21: "4", 23: "5", 22: "6", 26: "7", 28: "8", 25: "9",

	122: "F1", 120: "F2", 99: "F3", 118: "F4", 96: "F5", 97: "F6",
	98: "F7", 100: "F8", 101: "F9", 109: "F10", 103: "F11", 111: "F12",
}
