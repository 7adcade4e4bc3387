// Command fabricsim runs a cycle-approximate interconnection-network
// workload from a YAML configuration file.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
