package main

import (
	"context"

	"itinventory/cmd"
)

func main() {
	cmd.Execute(context.Background())
}
