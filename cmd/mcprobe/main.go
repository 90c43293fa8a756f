// mcprobe scans a list of Minecraft Java-edition servers for version,
// player counts, MOTD, and (optionally) authentication posture.
package main

import "github.com/go-mclib/mcprobe/cmd/mcprobe/commands"

func main() {
	commands.Execute()
}
