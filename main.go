package main

import "github.com/easyparts/easyparts/cmd"

func main() {
	cmd.Execute()
}
