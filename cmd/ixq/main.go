// Command ixq loads JSON records into an indexed collection described by a
// YAML config and answers one query against it.
//
//	ixq query   --config ixq.yaml --data users.ndjson --index email --key a@x.io
//	ixq query   --config ixq.yaml --data users.ndjson --index search --arg "storage"
//	ixq related --config ixq.yaml --data users.ndjson --source tasks.json --path owner
//	ixq stats   --config ixq.yaml --data users.ndjson --metrics
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ixq:", err)
		os.Exit(1)
	}
}
