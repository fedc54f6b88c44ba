// Command rex runs the tasks, jobs and deployments declared in a rexfile.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}
