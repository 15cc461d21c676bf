// Package redistribute reassigns part of each parent fund's entries to its
// configured sub-funds, deterministically for a given seed.
package redistribute

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/classify"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/configs"
	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// DefaultSeed is the seed used when the caller does not pick one. Runs over
// the same input with the same seed always produce the same assignment.
const DefaultSeed int64 = 42

// Config controls the redistribution behavior.
type Config struct {
	// Seed drives the per-parent shuffles. Zero selects DefaultSeed.
	Seed int64
	// MinParentShare is the fraction of a parent's rows that stay with the
	// parent, rounded up. Zero selects 0.5. At least one row always stays.
	MinParentShare float64
	// StrictEvenSplit spreads leftover rows round-robin across the
	// sub-funds instead of returning them to the parent.
	StrictEvenSplit bool
}

// Result summarizes one redistribution pass.
type Result struct {
	ParentsMatched int
	RowsMatched    int
	RowsReassigned int
	RowsToChildren map[string]int
}

// Engine partitions parent fund entries across sub-funds.
type Engine struct {
	mapping []configs.ParentMapping
	config  Config
	log     logger.Logger
}

// NewEngine creates an engine over the given parent/sub-fund mapping.
func NewEngine(mapping []configs.ParentMapping, config Config) *Engine {
	if config.Seed == 0 {
		config.Seed = DefaultSeed
	}
	if config.MinParentShare <= 0 || config.MinParentShare > 1 {
		config.MinParentShare = 0.5
	}
	return &Engine{
		mapping: mapping,
		config:  config,
		log:     logger.GetGlobalLogger().WithComponent("redistribute"),
	}
}

// Redistribute walks the mapping in order and partitions each parent's rows.
// Records are updated in place: every matched row receives a categorized
// fund name, and rows handed to a sub-fund also receive the sub-fund's type.
// Each row is claimed by at most one mapping entry.
func (e *Engine) Redistribute(records []models.CanonicalRecord) Result {
	result := Result{RowsToChildren: make(map[string]int)}
	claimed := make([]bool, len(records))

	for _, pm := range e.mapping {
		// Rows already named after a sub-fund keep that identity instead
		// of re-entering the parent's pool.
		for _, child := range pm.Children {
			for i := range records {
				if claimed[i] || !namesMatch(records[i].FundName, child) {
					continue
				}
				records[i].CategorizedFund = child
				records[i].FundType = classify.ResolveChildType(child)
				claimed[i] = true
				result.RowsMatched++
			}
		}

		var parentRows []int
		for i := range records {
			if !claimed[i] && namesMatch(records[i].FundName, pm.Parent) {
				parentRows = append(parentRows, i)
				claimed[i] = true
			}
		}
		if len(parentRows) == 0 {
			continue
		}
		result.ParentsMatched++
		result.RowsMatched += len(parentRows)

		for _, i := range parentRows {
			records[i].CategorizedFund = pm.Parent
		}
		if len(pm.Children) == 0 {
			continue
		}

		reassigned := e.partition(records, parentRows, pm, result.RowsToChildren)
		result.RowsReassigned += reassigned

		e.log.WithFields(logger.Fields{
			"parent":     pm.Parent,
			"rows":       len(parentRows),
			"reassigned": reassigned,
			"children":   len(pm.Children),
		}).Debug("Parent fund redistributed")
	}

	return result
}

// partition shuffles the parent's rows with a parent-specific seed, retains
// at least half with the parent, then deals the remainder to the sub-funds
// in mapping order.
func (e *Engine) partition(records []models.CanonicalRecord, parentRows []int, pm configs.ParentMapping, toChildren map[string]int) int {
	rng := rand.New(rand.NewSource(e.parentSeed(pm.Parent)))

	shuffled := make([]int, len(parentRows))
	copy(shuffled, parentRows)
	rng.Shuffle(len(shuffled), func(a, b int) {
		shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
	})

	keep := int(math.Ceil(e.config.MinParentShare * float64(len(shuffled))))
	if keep < 1 {
		keep = 1
	}
	if keep > len(shuffled) {
		keep = len(shuffled)
	}
	remainder := shuffled[keep:]
	if len(remainder) == 0 {
		return 0
	}

	rowsPerChild := len(remainder) / len(pm.Children)
	if rowsPerChild < 1 {
		rowsPerChild = 1
	}

	reassigned := 0
	next := 0
	for _, child := range pm.Children {
		if next >= len(remainder) {
			break
		}
		end := next + rowsPerChild
		if end > len(remainder) {
			end = len(remainder)
		}
		for _, i := range remainder[next:end] {
			assignToChild(&records[i], child)
			toChildren[child]++
			reassigned++
		}
		next = end
	}

	// Leftover rows stay with the parent unless a strict split was asked
	// for, in which case they go round-robin to the sub-funds.
	if e.config.StrictEvenSplit {
		for offset, i := 0, next; i < len(remainder); i, offset = i+1, offset+1 {
			child := pm.Children[offset%len(pm.Children)]
			assignToChild(&records[remainder[i]], child)
			toChildren[child]++
			reassigned++
		}
	}

	return reassigned
}

func assignToChild(record *models.CanonicalRecord, child string) {
	record.CategorizedFund = child
	record.FundType = classify.ResolveChildType(child)
}

// parentSeed derives a stable per-parent seed so the assignment for one
// parent does not depend on how many rows other parents matched.
func (e *Engine) parentSeed(parent string) int64 {
	h := fnv.New64a()
	h.Write([]byte(models.NormalizeName(parent)))
	return e.config.Seed ^ int64(h.Sum64())
}

// namesMatch reports whether either normalized name contains the other.
// Custodians truncate and re-accent fund names, so exact equality is too
// strict.
func namesMatch(a, b string) bool {
	na := models.NormalizeName(a)
	nb := models.NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
