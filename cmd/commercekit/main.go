package main

import "github.com/artpar/commercekit/bootstrap"

func main() {
	bootstrap.Version = version
	Execute()
}
