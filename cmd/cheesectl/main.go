package main

import "cheeseshop/internal/cli"

// main 为运维命令行入口。
func main() {
	cli.Execute()
}
