// cmd/tools/tuning-compare/main.go
//
// Compares two engine tunings over the same population snapshot: runs the
// pipeline once per configuration and reports which assignments changed.
// Scoring never touches the database or Redis here, so this is safe to run
// against production config files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/engine/pipeline"
	"match-engine/internal/models"
	"match-engine/internal/snapshot"
	"match-engine/pkg/registry"
)

func main() {
	baseline := flag.String("baseline", "", "Path to the baseline config file")
	candidate := flag.String("candidate", "", "Path to the candidate config file")
	snapshotFile := flag.String("snapshot", "", "Path to the population snapshot JSON file")
	flag.Parse()

	if *baseline == "" || *candidate == "" || *snapshotFile == "" {
		fmt.Println("Error: baseline, candidate, and snapshot are required.")
		flag.Usage()
		os.Exit(1)
	}

	log := logger.NewNoOpLogger()

	baseCfg, err := config.LoadFromFile(*baseline)
	if err != nil {
		fatal("baseline config: %v", err)
	}
	candCfg, err := config.LoadFromFile(*candidate)
	if err != nil {
		fatal("candidate config: %v", err)
	}

	reg, err := loadRegistry(baseCfg)
	if err != nil {
		fatal("registry: %v", err)
	}

	users, err := snapshot.NewFileLoader(*snapshotFile, reg, log).Load()
	if err != nil {
		fatal("snapshot: %v", err)
	}

	ctx := context.Background()
	baseResult, err := pipeline.New(baseCfg.Engine, reg, log).Run(ctx, "baseline", users)
	if err != nil {
		fatal("baseline run: %v", err)
	}
	candResult, err := pipeline.New(candCfg.Engine, reg, log).Run(ctx, "candidate", users)
	if err != nil {
		fatal("candidate run: %v", err)
	}

	report(baseResult, candResult)
}

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Engine.RegistryPath != "" {
		return registry.LoadRegistry(cfg.Engine.RegistryPath)
	}
	return registry.Default(), nil
}

func report(base, cand *models.RunResult) {
	basePairs := pairKeys(base.Assignments)
	candPairs := pairKeys(cand.Assignments)

	fmt.Printf("baseline:  %d pairs, %d unmatched (config %s)\n",
		len(base.Assignments), len(base.Unmatched), base.Diagnostics.ConfigVersion)
	fmt.Printf("candidate: %d pairs, %d unmatched (config %s)\n",
		len(cand.Assignments), len(cand.Unmatched), cand.Diagnostics.ConfigVersion)
	fmt.Printf("scored:    %d -> %d, eligible: %d -> %d, prefiltered: %d -> %d\n",
		base.Diagnostics.PairsScored, cand.Diagnostics.PairsScored,
		base.Diagnostics.PairsEligible, cand.Diagnostics.PairsEligible,
		base.Diagnostics.DyadsPrefiltered, cand.Diagnostics.DyadsPrefiltered)

	var kept, dropped, added []string
	for k := range basePairs {
		if candPairs[k] {
			kept = append(kept, k)
		} else {
			dropped = append(dropped, k)
		}
	}
	for k := range candPairs {
		if !basePairs[k] {
			added = append(added, k)
		}
	}
	sort.Strings(kept)
	sort.Strings(dropped)
	sort.Strings(added)

	fmt.Printf("unchanged: %d\n", len(kept))
	for _, k := range dropped {
		fmt.Printf("  - %s\n", k)
	}
	for _, k := range added {
		fmt.Printf("  + %s\n", k)
	}
}

func pairKeys(assignments []models.MatchAssignment) map[string]bool {
	keys := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		u, v := a.UserA, a.UserB
		if u > v {
			u, v = v, u
		}
		keys[fmt.Sprintf("%s/%s", u, v)] = true
	}
	return keys
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
