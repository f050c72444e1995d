package controls

import (
	"testing"

	"github.com/overlaysim/overlaysim/sim/internal/testlog"
)

func TestMain(m *testing.M) {
	testlog.Main(m)
}
