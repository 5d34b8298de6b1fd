package main

import (
	"os"

	"codeberg.org/mutker/iroverlay/internal/overlay/host"
	"codeberg.org/mutker/iroverlay/internal/store"
)

func main() {
	os.Exit(host.Main(store.KindSpeed, "speed-overlay"))
}
