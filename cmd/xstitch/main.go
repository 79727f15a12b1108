// xstitch - cross-stitch patterns from pictures
//
// xstitch shrinks an image to a stitch grid, matches every stitch to a DMC
// embroidery thread and writes the resulting chart and thread legend.
package main

import (
	"os"

	"github.com/jmylchreest/xstitch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
