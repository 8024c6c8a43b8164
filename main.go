// The main package for the warn-scraper executable.
package main

import (
	"github.com/USDepartmentofLabor/cdf-warn/cmd"
)

func main() {
	cmd.Execute()
}
