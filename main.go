package main

import "gridfs-manager/cmd"

func main() {
	cmd.Execute()
}
