//go:build linux

package watchdog

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDevices = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
H: Handlers=kbd event0
B: EV=3

I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
H: Handlers=sysrq kbd leds event3
B: EV=120013

I: Bus=0003 Vendor=046d Product=c077 Version=0111
N: Name="Logitech USB Optical Mouse"
H: Handlers=mouse0 event5
B: EV=17

I: Bus=0000 Vendor=0000 Product=0000 Version=0000
N: Name="HDA Intel PCH Headphone"
H: Handlers=event7
B: EV=21
`

func TestParseDevices(t *testing.T) {
	nodes := parseDevices(strings.NewReader(sampleDevices))
	assert.Equal(t, []string{"event0", "event3", "event5"}, nodes)
}

func encodeEvent(typ, code uint16, value int32) []byte {
	rec := make([]byte, inputEventSize)
	tail := rec[inputEventSize-8:]
	binary.NativeEndian.PutUint16(tail[0:2], typ)
	binary.NativeEndian.PutUint16(tail[2:4], code)
	binary.NativeEndian.PutUint32(tail[4:8], uint32(value))
	return rec
}

func TestDecodeEvents(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeEvent(evKey, 29, 1)...)
	buf = append(buf, encodeEvent(evRel, 0, -3)...)
	buf = append(buf, 0xff, 0xff) // partial trailing record is ignored

	events := decodeEvents(buf)
	require.Len(t, events, 2)
	assert.Equal(t, inputEvent{Type: evKey, Code: 29, Value: 1}, events[0])
	assert.Equal(t, inputEvent{Type: evRel, Code: 0, Value: -3}, events[1])
}

func TestHandleEvent(t *testing.T) {
	w, _, rec := newTestWatchdog()
	fired := make(chan struct{}, 1)
	w.Chords().Register("Ctrl+D", func() { fired <- struct{}{} })

	w.handleEvent(inputEvent{Type: evRel, Code: 0, Value: 4})
	w.handleEvent(inputEvent{Type: 0}) // EV_SYN
	assert.Equal(t, 1, rec.count())

	w.handleEvent(inputEvent{Type: evKey, Code: 29, Value: 1})
	w.handleEvent(inputEvent{Type: evKey, Code: 32, Value: 1})
	<-fired
	assert.Equal(t, 3, rec.count())
}
