package main

import (
	"context"
	"fmt"
	"os"

	"itinventory/cmd"
)

func main() {
	if err := cmd.Serve(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
