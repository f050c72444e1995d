package cmd

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//go:embed scenarios/*.yaml
var scenarioFiles embed.FS

// exampleNames lists the bundled scenarios.
func exampleNames() []string {
	entries, err := scenarioFiles.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

// exampleScenario returns the YAML of a bundled scenario.
func exampleScenario(name string) ([]byte, error) {
	data, err := scenarioFiles.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown example %q; available: %s", name, strings.Join(exampleNames(), ", "))
	}
	return data, nil
}

// exampleCmd prints a bundled scenario to stdout
var exampleCmd = &cobra.Command{
	Use:   "example [name]",
	Short: "Print a sample scenario (average, broadcast)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := "average"
		if len(args) == 1 {
			name = args[0]
		}
		data, err := exampleScenario(name)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		_, _ = os.Stdout.Write(data)
	},
}
