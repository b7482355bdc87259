package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
	"aurdist/internal/types"
)

// Classifier buckets dependency names by where they can be satisfied. The
// system oracle is consulted first (cheap, local); only misses go out to the
// remote registry. Classification is side-effect-free and never fails on a
// transport error: lookup failures degrade to "not found" with a log line.
type Classifier struct {
	System   ports.SystemPackagePort
	Registry ports.RegistryPort
}

func NewClassifier(system ports.SystemPackagePort, registry ports.RegistryPort) Classifier {
	return Classifier{System: system, Registry: registry}
}

func (c Classifier) Classify(ctx context.Context, name string) types.Classification {
	if c.System.HasPackage(ctx, name) {
		return types.ClassificationSystemRepo
	}
	info, err := c.Registry.Lookup(ctx, name)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("package", name).Msg("registry lookup failed, treating as not found")
		return types.ClassificationUnresolvable
	}
	if info.Found {
		return types.ClassificationThirdParty
	}
	return types.ClassificationUnresolvable
}

// Analyze batches classification over a dependency set, excluding optional
// dependencies. The resulting lists drive install order and reporting; they
// are recomputed per resolution pass, never cached across packages.
func (c Classifier) Analyze(ctx context.Context, deps types.DependencySet) types.DependencyAnalysis {
	analysis := types.DependencyAnalysis{}
	all := deps.Resolved()
	analysis.TotalCount = len(all)
	for _, dep := range all {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		switch c.Classify(ctx, dep) {
		case types.ClassificationSystemRepo:
			analysis.SystemRepo = append(analysis.SystemRepo, dep)
		case types.ClassificationThirdParty:
			analysis.ThirdParty = append(analysis.ThirdParty, dep)
		default:
			analysis.Unresolvable = append(analysis.Unresolvable, dep)
		}
	}
	return analysis
}
