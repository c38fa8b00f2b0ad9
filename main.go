package main

import "github.com/zircuit-multisig/safe-eth-go/cmd/safeeth"

func main() {
	safeeth.Execute()
}
