//go:build windows

package watchdog

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104

	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmMouseHWheel = 0x020E

	// Set by the OS on events produced by SendInput
	llkhfInjected = 0x10
	llmhfInjected = 0x01
)

type kbdLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msLLHookStruct struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

var (
	active       *Watchdog
	keyboardHook uintptr
	mouseHook    uintptr
)

func (w *Watchdog) startPlatform() error {
	active = w
	started := make(chan error, 1)

	// Hooks must be registered in the same thread that runs the message loop
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		hMod, _, _ := procGetModuleHandle.Call(0)

		var err error
		keyboardHook, _, err = procSetWindowsHookEx.Call(
			whKeyboardLL,
			syscall.NewCallback(keyboardHookProc),
			hMod,
			0,
		)
		if keyboardHook == 0 {
			started <- fmt.Errorf("set keyboard hook: %w", err)
			return
		}

		mouseHook, _, err = procSetWindowsHookEx.Call(
			whMouseLL,
			syscall.NewCallback(mouseHookProc),
			hMod,
			0,
		)
		if mouseHook == 0 {
			procUnhookWindowsHookEx.Call(keyboardHook)
			started <- fmt.Errorf("set mouse hook: %w", err)
			return
		}
		started <- nil

		var msg struct {
			Hwnd    syscall.Handle
			Message uint32
			Wparam  uintptr
			Lparam  uintptr
			Time    uint32
			Pt      struct{ X, Y int32 }
		}

		for {
			ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
		}

		procUnhookWindowsHookEx.Call(keyboardHook)
		procUnhookWindowsHookEx.Call(mouseHook)
	}()

	return <-started
}

func keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		kbd := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		if kbd.Flags&llkhfInjected == 0 {
			isDown := wParam == wmKeyDown || wParam == wmSysKeyDown
			if name := vkCodeToName(kbd.VkCode); name != "" {
				active.KeyEvent(name, isDown)
			} else {
				active.Observe()
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		ms := (*msLLHookStruct)(unsafe.Pointer(lParam))
		if ms.Flags&llmhfInjected == 0 {
			switch wParam {
			case wmLButtonDown:
				active.KeyEvent("MOUSE1", true)
			case wmLButtonUp:
				active.KeyEvent("MOUSE1", false)
			case wmRButtonDown:
				active.KeyEvent("MOUSE3", true)
			case wmRButtonUp:
				active.KeyEvent("MOUSE3", false)
			case wmMButtonDown:
				active.KeyEvent("MOUSE2", true)
			case wmMButtonUp:
				active.KeyEvent("MOUSE2", false)
			case wmXButtonDown, wmXButtonUp:
				name := "MOUSE5"
				if ms.MouseData>>16 == 1 {
					name = "MOUSE4"
				}
				active.KeyEvent(name, wParam == wmXButtonDown)
			case wmMouseMove, wmMouseWheel, wmMouseHWheel:
				active.Observe()
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return ret
}

func vkCodeToName(vk uint32) string {
	switch vk {
	case 0x11, 0xA2, 0xA3:
		return "CTRL"
	case 0x12, 0xA4, 0xA5:
		return "ALT"
	case 0x10, 0xA0, 0xA1:
		return "SHIFT"
	case 0x5B, 0x5C:
		return "CMD"
	case 0x20:
		return "SPACE"
	case 0x0D:
		return "ENTER"
	case 0x1B:
		return "ESC"
	case 0x08:
		return "BACKSPACE"
	case 0x09:
		return "TAB"
	case 0x25:
		return "LEFT"
	case 0x26:
		return "UP"
	case 0x27:
		return "RIGHT"
	case 0x28:
		return "DOWN"
	case 0x2E:
		return "DELETE"
	}

	// Letters and digits map to their ASCII code
	if (vk >= 0x41 && vk <= 0x5A) || (vk >= 0x30 && vk <= 0x39) {
		return string(rune(vk))
	}

	if vk >= 0x70 && vk <= 0x7B {
		return fmt.Sprintf("F%d", vk-0x6F)
	}

	return ""
}
