// jws is the command line client for generating keys and creating/verifying
// JWS compact serializations without the HTTP service.
package main

import "github.com/information-sharing-networks/jws-demo/internal/cli"

func main() {
	cli.Execute()
}
