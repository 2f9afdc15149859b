// Command covermain records one coverage session per example with the
// runtime driver and prints the merged coverage as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine/testdata/covermain/calc"
)

func main() {
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string) error {
	eng := engine.New(engine.NewRuntimeDriver(dir))
	examples := []struct {
		label string
		n     int
	}{
		{"abs::positive", 3},
		{"abs::negative", -3},
	}
	for _, ex := range examples {
		if err := eng.Start(ex.label); err != nil {
			return err
		}
		calc.Abs(ex.n)
		if err := eng.Stop(); err != nil {
			return err
		}
	}
	cov, err := eng.Data(context.Background())
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(cov)
}
