//go:build pi
// +build pi

package ui

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

const (
	redPin   = "GPIO6"
	greenPin = "GPIO5"
	bluePin  = "GPIO13"

	pauseButtonPin = 26
)

func init() {
	if _, err := host.Init(); err != nil {
		logrus.Fatalln("Unable to initialize periph:", err)
	}
}

type colorLed struct {
	r gpio.PinIO
	g gpio.PinIO
	b gpio.PinIO
}

// Common anode LED, low side switches the color on.
func (c *colorLed) Playing() {
	c.Off()
	c.g.Out(gpio.Low)
}

func (c *colorLed) Idle() {
	c.Off()
	c.b.Out(gpio.Low)
}

func (c *colorLed) Error() {
	c.Off()
	c.r.Out(gpio.Low)
}

func (c *colorLed) Off() {
	c.r.Out(gpio.High)
	c.g.Out(gpio.High)
	c.b.Out(gpio.High)
}

func InitLed() StatusLed {
	logrus.Infoln("Initializing LED")

	c := colorLed{
		r: gpioreg.ByName(redPin),
		g: gpioreg.ByName(greenPin),
		b: gpioreg.ByName(bluePin),
	}
	c.Off()
	return &c
}

// InitPauseButton starts watching the pause button and returns a channel
// that gets an event per press.
func InitPauseButton() (<-chan struct{}, error) {
	logrus.Infoln("Initializing pause button")
	if err := rpio.Open(); err != nil {
		return nil, err
	}

	push := rpio.Pin(pauseButtonPin)
	push.Input()
	push.PullUp()
	push.Detect(rpio.FallEdge)

	c := make(chan struct{}, 1)
	go func() {
		for {
			if !push.EdgeDetected() {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			// debounce, mechanical switches chatter for a while
			time.Sleep(50 * time.Millisecond)
			select {
			case c <- struct{}{}:
			default:
			}
		}
	}()
	return c, nil
}
