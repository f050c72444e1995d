package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/overlaysim/overlaysim/sim/config"
)

// validateScenario parses a scenario and wires its first experiment without
// running it, surfacing every configuration error a run would hit.
func validateScenario(data []byte) error {
	sc, err := config.ParseScenario(data)
	if err != nil {
		return err
	}
	runner, err := config.NewRunner(sc, config.Options{})
	if err != nil {
		return err
	}
	_, err = runner.NextExperiment()
	return err
}

// validateCmd checks a scenario file
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file without running it",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		data, err := os.ReadFile(scenarioPath)
		if err != nil {
			logrus.Fatalf("Reading scenario: %v", err)
		}
		if err := validateScenario(data); err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
		}
		fmt.Printf("%s: ok\n", scenarioPath)
	},
}
