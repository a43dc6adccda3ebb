package main

import "github.com/saswatsusmoy/aarogyaai-backend/cmd"

func main() {
	cmd.Execute()
}
