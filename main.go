package main

import "github.com/qrave1/LetzTalk/cmd"

func main() {
	cmd.Execute()
}
