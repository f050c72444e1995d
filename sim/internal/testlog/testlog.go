// Package testlog holds the TestMain shared by the simulator packages.
// It imports nothing from sim so the kernel's own tests can use it.
package testlog

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

// EnvDebug names the variable that keeps full logging in tests:
// DEBUG_TESTS=1 go test ./sim/... -v
const EnvDebug = "DEBUG_TESTS"

// Quiet raises the logrus level to warn unless EnvDebug is set, and returns
// the level it replaced.
func Quiet() logrus.Level {
	prev := logrus.GetLevel()
	if os.Getenv(EnvDebug) == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	return prev
}

// Main runs the package tests with engine and observer logs quieted.
func Main(m *testing.M) {
	Quiet()
	os.Exit(m.Run())
}
