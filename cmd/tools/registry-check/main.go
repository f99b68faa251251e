// cmd/tools/registry-check/main.go
//
// Validates a question registry file before it is deployed: schema, type
// names, encoding tables and hard-filter roles. Exits nonzero on the first
// problem so it can gate a release pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	"match-engine/pkg/registry"
)

func main() {
	path := flag.String("path", "configs/questions.json", "Path to the registry file")
	list := flag.Bool("list", false, "Print every question after validation")
	flag.Parse()

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "registry invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: version %s, %d questions\n", *path, reg.Version, reg.Len())
	if gq := reg.GenderQuestion(); gq != "" {
		fmt.Printf("  gender hard filter: %s\n", gq)
	}
	if aq := reg.AgeQuestion(); aq != "" {
		fmt.Printf("  age hard filter:    %s\n", aq)
	}

	if *list {
		for _, q := range reg.All() {
			fmt.Printf("  %-24s %-12s ordinal=%d\n", q.ID, q.Section, q.OrdinalRange())
		}
	}
}
