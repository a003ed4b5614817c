package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", pkgerrors.UserFacing(err))
		os.Exit(1)
	}
}
