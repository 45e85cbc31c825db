package main

import "github.com/WebNaresh/expense-management/cmd"

func main() {
	cmd.Execute()
}
