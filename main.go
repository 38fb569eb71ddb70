package main

import (
	"fmt"
	"os"

	"github.com/jukaradayi/abkhazia/cmd"
	"github.com/jukaradayi/abkhazia/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(errors.GetExitCode(err))
	}
}
