// Command catalogcheck verifies the treatment catalog against the classifier
// label sets and the advisory override rules. It checks that every catalog
// key is reachable from some label, reports labels without a treatment, and
// evaluates each disease's weather rules at their thresholds.
//
// Usage:
//
//	go run ./cmd/catalogcheck [-catalog path/to/treatments.yaml] [-strict]
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/crop-advisory-service/internal/catalog"
	"github.com/couchcryptid/crop-advisory-service/internal/classify"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("catalog", "", "catalog YAML file (default: embedded catalog)")
	strict := flag.Bool("strict", false, "fail when a classifier label has no treatment")
	flag.Parse()

	os.Exit(run(*path, *strict))
}

func run(path string, strict bool) int {
	fmt.Println("=== Treatment Catalog Check ===")
	fmt.Println()

	cat, err := load(path)
	if err != nil {
		fmt.Printf("load catalog: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkOrphans(cat),
		checkCoverage(cat, strict),
		checkRules(cat),
	}

	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Treatments: %d across %d crops\n", cat.Len(), len(cat.Crops()))

	failed := false
	for _, p := range phases {
		for _, w := range p.warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		if p.passed() {
			continue
		}
		failed = true
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if failed {
		fmt.Println("\nCatalog check FAILED.")
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func load(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// labelKeys returns the disease keys a crop's classifier can produce.
func labelKeys(crop domain.Crop) map[string]string {
	keys := make(map[string]string, len(classify.Labels[crop]))
	for _, label := range classify.Labels[crop] {
		keys[domain.DiseaseKey(label)] = label
	}
	return keys
}

// checkOrphans fails on catalog entries no classifier label maps to.
func checkOrphans(cat *catalog.Catalog) *phase {
	p := &phase{name: "catalog keys reachable from labels"}
	for _, crop := range cat.Crops() {
		reachable := labelKeys(crop)
		keys := cat.Keys(crop)
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := reachable[key]; !ok {
				p.errorf("%s/%s: no %s label maps to this key", crop, key, crop)
			}
		}
	}
	return p
}

// checkCoverage reports labels that fall back to an empty treatment.
func checkCoverage(cat *catalog.Catalog, strict bool) *phase {
	p := &phase{name: "classifier label coverage"}
	for _, crop := range domain.Crops {
		for _, label := range classify.Labels[crop] {
			key := domain.DiseaseKey(label)
			if _, ok := cat.Lookup(crop, key); ok {
				continue
			}
			if strict {
				p.errorf("%s: label %q (%s) has no treatment", crop, label, key)
			} else {
				p.warnf("%s: label %q (%s) has no treatment", crop, label, key)
			}
		}
	}
	return p
}

// checkRules confirms each rule fires exactly at its threshold and not below it.
func checkRules(cat *catalog.Catalog) *phase {
	p := &phase{name: "weather rules fire at threshold"}
	for _, crop := range cat.Crops() {
		keys := cat.Keys(crop)
		sort.Strings(keys)
		for _, key := range keys {
			th := cat.Thresholds(crop, key)
			if th.HeavyRainMM != nil {
				checkRule(p, crop, key, th, domain.ForecastAggregate{RainMM: th.HeavyRainMM}, domain.DecisionDiseaseHeavyRain)
			}
			if th.HumidityHighPct != nil {
				checkRule(p, crop, key, th, domain.ForecastAggregate{AvgHumidity: th.HumidityHighPct}, domain.DecisionDiseaseHighHumidity)
			}
		}
	}
	return p
}

func checkRule(p *phase, crop domain.Crop, key string, th domain.WeatherThresholds, at domain.ForecastAggregate, want domain.Decision) {
	adv := domain.NewAdvisory(at, domain.Recommend(at, domain.AdvisoryDays), domain.Coordinates{})
	if got := domain.ApplyDiseaseOverride(adv, th).Decision; got != want {
		p.errorf("%s/%s: at threshold got decision %s, want %s", crop, key, got, want)
	}
}
