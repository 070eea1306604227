// Command budget runs the budget planner web app.
//
// Configuration comes from environment variables, optionally set in a .env file;
// cf. package ranger.
package main

import (
	"fmt"
	"os"

	"github.com/xy-planning-network/budget/ranger"
)

func main() {
	rng, err := ranger.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rng.Guide(); err != nil {
		rng.EmitLogger().Error(err.Error(), nil)
		os.Exit(1)
	}
}
