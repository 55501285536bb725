// Command fjs2csv converts a single-file FJS instance into the three-file
// CSV intake format, with RunSpeed=1 and an all-zero setup matrix.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/r3b0rn/fjsp-tabu/internal/intake"
)

func main() {
	var (
		in  = flag.String("in", "", "path to the source .fjs file")
		out = flag.String("out", "", "output directory for jobTasks.csv, machineRunSpeed.csv, sequenceDependencyMatrix.csv")
	)
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: fjs2csv -in instance.fjs -out dir/")
		os.Exit(2)
	}

	if err := intake.FJSToCSV(*in, *out); err != nil {
		fmt.Fprintln(os.Stderr, "fjs2csv:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote CSV triple to", *out)
}
