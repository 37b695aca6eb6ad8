// Package main provides a one-shot utility for writer grant key generation.
//
// It emits the key pair the scene service uses to verify writer grants.
package main

import (
	"os"

	"github.com/louisbranch/courtroom.space/internal/platform/config"
	"github.com/louisbranch/courtroom.space/internal/tools/scenekey"
)

func main() {
	if err := scenekey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate writer grant key: %v", err)
	}
}
