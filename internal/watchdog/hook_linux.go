//go:build linux

package watchdog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devicesFile = "/proc/bus/input/devices"

// evdev event types
const (
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03
)

// struct input_event: timeval, then type, code and value
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// decodeEvents decodes a buffer of whole input_event records
func decodeEvents(buf []byte) []inputEvent {
	tv := inputEventSize - 8
	events := make([]inputEvent, 0, len(buf)/inputEventSize)
	for off := 0; off+inputEventSize <= len(buf); off += inputEventSize {
		rec := buf[off+tv : off+inputEventSize]
		events = append(events, inputEvent{
			Type:  binary.NativeEndian.Uint16(rec[0:2]),
			Code:  binary.NativeEndian.Uint16(rec[2:4]),
			Value: int32(binary.NativeEndian.Uint32(rec[4:8])),
		})
	}
	return events
}

// parseDevices returns the event node names of keyboards and pointers
// listed in /proc/bus/input/devices.
func parseDevices(r io.Reader) []string {
	var nodes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "H: Handlers=") {
			continue
		}
		handlers := strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
		relevant := false
		event := ""
		for _, h := range handlers {
			switch {
			case h == "kbd" || strings.HasPrefix(h, "mouse"):
				relevant = true
			case strings.HasPrefix(h, "event"):
				event = h
			}
		}
		if relevant && event != "" {
			nodes = append(nodes, event)
		}
	}
	return nodes
}

func (w *Watchdog) startPlatform() error {
	f, err := os.Open(devicesFile)
	if err != nil {
		return fmt.Errorf("list input devices: %w", err)
	}
	nodes := parseDevices(f)
	f.Close()

	opened := 0
	var errs []error
	for _, node := range nodes {
		path := filepath.Join("/dev/input", node)
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		opened++
		go w.readDevice(path, fd)
	}

	if opened == 0 {
		if len(errs) == 0 {
			return errors.New("no keyboard or pointer devices found")
		}
		return fmt.Errorf("no readable input devices (is the user in the input group?): %w", errors.Join(errs...))
	}
	if len(errs) > 0 {
		w.logger.Warn().Err(errors.Join(errs...)).Msg("Some input devices are not readable")
	}
	return nil
}

func (w *Watchdog) readDevice(path string, fd int) {
	defer unix.Close(fd)

	buf := make([]byte, inputEventSize*64)
	for {
		n, err := unix.Read(fd, buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n <= 0 {
			w.logger.Warn().Err(err).Str("device", path).Msg("Input device closed")
			return
		}
		for _, ev := range decodeEvents(buf[:n]) {
			w.handleEvent(ev)
		}
	}
}

func (w *Watchdog) handleEvent(ev inputEvent) {
	switch ev.Type {
	case evKey:
		// 0 release, 1 press, 2 auto-repeat
		name := evdevKeyNames[ev.Code]
		if name == "" {
			w.Observe()
			return
		}
		w.KeyEvent(name, ev.Value != 0)
	case evRel, evAbs:
		w.Observe()
	}
}

var evdevKeyNames = map[uint16]string{
	29: "CTRL", 97: "CTRL",
	42: "SHIFT", 54: "SHIFT",
	56: "ALT", 100: "ALT",
	125: "CMD", 126: "CMD",
	1: "ESC", 14: "BACKSPACE", 15: "TAB", 28: "ENTER", 57: "SPACE",
	103: "UP", 105: "LEFT", 106: "RIGHT", 108: "DOWN", 111: "DELETE",

	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T", 21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G", 35: "H", 36: "J", 37: "K", 38: "L",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B", 49: "N", 50: "M",

	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",

	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5", 64: "F6",
	65: "F7", 66: "F8", 67: "F9", 68: "F10", 87: "F11", 88: "F12",

	0x110: "MOUSE1", 0x111: "MOUSE3", 0x112: "MOUSE2",
}
