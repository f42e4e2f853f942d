package main

import (
	"github.com/irwinb/tradecouncil/internal/cli"
)

func main() {
	cli.Run()
}
