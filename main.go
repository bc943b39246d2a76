// ABOUTME: Entry point for the musics player
// ABOUTME: Hands control to the command line
package main

import "github.com/musics-player/musics-go/internal/cli"

func main() {
	cli.Execute()
}
