// Command chromint integrates chromatographic traces read from CSV files.
//
// Usage:
//
//	chromint integrate --calib calib.yaml --detector TCD run1.csv run2.csv
//	chromint integrate --calib calib.yaml --detector TCD --average rep*.csv
//	chromint peaks --window 11 --order 3 run1.csv
//	chromint version
//
// Every flag can also be set in a config file (--config, default
// ./.chromint.yaml) or through CHROMINT_* environment variables, e.g.
// CHROMINT_MIN_DISTANCE=3.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
