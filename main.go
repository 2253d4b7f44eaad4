package main

import "github.com/frahmantamala/star-supla/cmd"

func main() {
	cmd.Execute()
}
