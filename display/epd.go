package display

// Driver for the Waveshare 2.13" e-ink HAT (V1 panel). Command set is
// documented in the Waveshare wiki and the SSD1675 datasheet.

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/callebjorkell/musicbox/box"
	"github.com/ecc1/spi"
	"github.com/fogleman/gg"
	"github.com/jdevelop/gpio"
	rpio "github.com/jdevelop/gpio/rpi"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

const (
	epdWidth  = 122
	epdHeight = 250

	epdDriverOutput     = 0x01
	epdBoosterSoftStart = 0x0C
	epdDeepSleep        = 0x10
	epdDataEntryMode    = 0x11
	epdSwReset          = 0x12
	epdMasterActivation = 0x20
	epdUpdateControl2   = 0x22
	epdWriteRAM         = 0x24
	epdWriteVcom        = 0x2C
	epdWriteLUT         = 0x32
	epdDummyLinePeriod  = 0x3A
	epdGateLineWidth    = 0x3B
	epdSetRAMXRange     = 0x44
	epdSetRAMYRange     = 0x45
	epdSetRAMXCounter   = 0x4E
	epdSetRAMYCounter   = 0x4F
)

// Full refresh waveform from the Waveshare reference code.
var epdFullUpdateLUT = []byte{
	0x22, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x11,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// EPD drives the panel over SPI, with the DC/RST/BUSY lines on GPIO. The
// wiring follows the stock HAT pinout.
type EPD struct {
	spiDev *spi.Device
	dc     gpio.Pin
	rst    gpio.Pin
	busy   gpio.Pin
}

func NewEPD() (*EPD, error) {
	return newEPD("/dev/spidev0.0", 25, 17, 24)
}

func newEPD(device string, dcPin, rstPin, busyPin int) (*EPD, error) {
	spiDev, err := spi.Open(device, 4000000, 0)
	if err != nil {
		return nil, fmt.Errorf("open SPI device: %w", err)
	}
	if err := spiDev.SetLSBFirst(false); err != nil {
		spiDev.Close()
		return nil, err
	}
	if err := spiDev.SetBitsPerWord(8); err != nil {
		spiDev.Close()
		return nil, err
	}

	dc, err := rpio.OpenPin(dcPin, gpio.ModeOutput)
	if err != nil {
		spiDev.Close()
		return nil, fmt.Errorf("open DC pin: %w", err)
	}
	rst, err := rpio.OpenPin(rstPin, gpio.ModeOutput)
	if err != nil {
		spiDev.Close()
		return nil, fmt.Errorf("open RST pin: %w", err)
	}
	busy, err := rpio.OpenPin(busyPin, gpio.ModeInput)
	if err != nil {
		spiDev.Close()
		return nil, fmt.Errorf("open BUSY pin: %w", err)
	}

	e := &EPD{spiDev: spiDev, dc: dc, rst: rst, busy: busy}
	if err := e.init(); err != nil {
		spiDev.Close()
		return nil, fmt.Errorf("initialize panel: %w", err)
	}
	log.Info("E-ink display initialized")
	return e, nil
}

func (e *EPD) init() error {
	e.reset()

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{epdSwReset, nil},
		// 250 gates, gate scan bottom up
		{epdDriverOutput, []byte{0xF9, 0x00, 0x00}},
		{epdBoosterSoftStart, []byte{0xD7, 0xD6, 0x9D}},
		{epdWriteVcom, []byte{0xA8}},
		{epdDummyLinePeriod, []byte{0x1A}},
		{epdGateLineWidth, []byte{0x08}},
		// x and y both incrementing
		{epdDataEntryMode, []byte{0x03}},
		{epdWriteLUT, epdFullUpdateLUT},
	}
	for _, step := range steps {
		if err := e.command(step.cmd, step.data...); err != nil {
			return err
		}
	}
	return e.waitIdle()
}

// Update redraws the whole panel with the given snapshot. A full refresh
// takes about two seconds, so call this sparingly.
func (e *EPD) Update(snapshot box.Snapshot) error {
	frame := e.render(StatusLines(snapshot))
	if err := e.writeFrame(frame); err != nil {
		return err
	}
	if err := e.command(epdUpdateControl2, 0xC4); err != nil {
		return err
	}
	if err := e.command(epdMasterActivation); err != nil {
		return err
	}
	return e.waitIdle()
}

// Close puts the panel into deep sleep. Leaving an e-ink panel powered with
// a static image damages it over time.
func (e *EPD) Close() error {
	if err := e.command(epdDeepSleep, 0x01); err != nil {
		return err
	}
	return e.spiDev.Close()
}

// render draws the lines into a landscape context. The panel RAM is
// portrait, writeFrame rotates.
func (e *EPD) render(lines []string) image.Image {
	dc := gg.NewContext(epdHeight, epdWidth)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)
	for i, line := range lines {
		dc.DrawString(line, 4, float64(16+i*18))
	}
	return dc.Image()
}

func (e *EPD) writeFrame(img image.Image) error {
	rowBytes := (epdWidth + 7) / 8
	buf := make([]byte, rowBytes*epdHeight)
	for i := range buf {
		buf[i] = 0xFF
	}
	for y := 0; y < epdHeight; y++ {
		for x := 0; x < epdWidth; x++ {
			r, g, b, _ := img.At(y, epdWidth-1-x).RGBA()
			if r+g+b < 3*0x7FFF {
				buf[y*rowBytes+x/8] &^= 0x80 >> uint(x%8)
			}
		}
	}

	if err := e.command(epdSetRAMXRange, 0x00, byte(rowBytes-1)); err != nil {
		return err
	}
	if err := e.command(epdSetRAMYRange, 0x00, 0x00, byte((epdHeight-1)&0xFF), byte((epdHeight-1)>>8)); err != nil {
		return err
	}
	if err := e.command(epdSetRAMXCounter, 0x00); err != nil {
		return err
	}
	if err := e.command(epdSetRAMYCounter, 0x00, 0x00); err != nil {
		return err
	}
	return e.command(epdWriteRAM, buf...)
}

func (e *EPD) command(cmd byte, data ...byte) error {
	e.dc.Clear()
	if err := e.spiDev.Transfer([]byte{cmd}); err != nil {
		return fmt.Errorf("command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	e.dc.Set()
	out := make([]byte, len(data))
	copy(out, data)
	if err := e.spiDev.Transfer(out); err != nil {
		return fmt.Errorf("command %#02x data: %w", cmd, err)
	}
	return nil
}

func (e *EPD) reset() {
	e.rst.Clear()
	time.Sleep(200 * time.Millisecond)
	e.rst.Set()
	time.Sleep(200 * time.Millisecond)
}

func (e *EPD) waitIdle() error {
	deadline := time.Now().Add(5 * time.Second)
	for e.busy.Get() {
		if time.Now().After(deadline) {
			return errors.New("display busy timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
