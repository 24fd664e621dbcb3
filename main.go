package main

import "timedctl/cmd"

// version is set via ldflags during build.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
