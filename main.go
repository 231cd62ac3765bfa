package main

import "github.com/mtanaka-dev/pr-analytics/cmd"

func main() {
	cmd.Execute()
}
