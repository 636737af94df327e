//go:build !pi
// +build !pi

package ui

import (
	"github.com/sirupsen/logrus"
)

type cliLed struct{}

func (cliLed) Playing() {
	logrus.Println("LED: Green")
}

func (cliLed) Idle() {
	logrus.Println("LED: Blue")
}

func (cliLed) Error() {
	logrus.Println("LED: Red")
}

func (cliLed) Off() {
	logrus.Println("LED: Off")
}

func InitLed() StatusLed {
	return cliLed{}
}

func InitPauseButton() (<-chan struct{}, error) {
	return make(chan struct{}), nil
}
