package cmd

import (
	"fmt"
)

const banner = `
     _         _   _     ____
    / \  _   _| |_| |__ | __ )  _____  __
   / _ \| | | | __| '_ \|  _ \ / _ \ \/ /
  / ___ \ |_| | |_| | | | |_) | (_) >  <
 /_/   \_\__,_|\__|_| |_|____/ \___/_/\_\

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Verification Kiosk - Version %s\x1b[0m\n\n", Version)
}
