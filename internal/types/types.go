package types

import (
	"regexp"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type DependencyKind string

const (
	DependencyKindRuntime  DependencyKind = "depends"
	DependencyKindMakeTime DependencyKind = "makedepends"
	DependencyKindCheck    DependencyKind = "checkdepends"
	DependencyKindOptional DependencyKind = "optdepends"
)

// ResolvedKinds are the dependency kinds that participate in dependency
// resolution. Optional dependencies are informational only.
var ResolvedKinds = []DependencyKind{
	DependencyKindRuntime,
	DependencyKindMakeTime,
	DependencyKindCheck,
}

// AllKinds lists every recognized recipe array, in recipe order.
var AllKinds = []DependencyKind{
	DependencyKindRuntime,
	DependencyKindMakeTime,
	DependencyKindCheck,
	DependencyKindOptional,
}

// DependencySet maps a dependency kind to the ordered names extracted from
// one build recipe. Entries keep whatever version-constraint suffix the
// recipe carried (e.g. "b>=1.0"); nothing is stripped.
type DependencySet map[DependencyKind][]string

// Resolved returns the non-optional dependencies, in kind order then recipe
// order.
func (s DependencySet) Resolved() []string {
	var out []string
	for _, kind := range ResolvedKinds {
		out = append(out, s[kind]...)
	}
	return out
}

type Classification string

const (
	ClassificationSystemRepo   Classification = "system-repo"
	ClassificationThirdParty   Classification = "third-party-source"
	ClassificationUnresolvable Classification = "unresolvable"
)

// DependencyAnalysis is the batched classification of one recipe's
// non-optional dependencies, ordered as they were classified.
type DependencyAnalysis struct {
	SystemRepo   []string
	ThirdParty   []string
	Unresolvable []string
	TotalCount   int
}

// RegistryInfo is one remote registry lookup result. Found=false covers both
// "no such package" and a degraded transport failure.
type RegistryInfo struct {
	Found        bool
	Version      string
	Depends      []string
	MakeDepends  []string
	CheckDepends []string
	OptDepends   []string
}

// BuildFailureRecord captures one failed package attempt. Records are
// appended for the run's consolidated report and never removed.
type BuildFailureRecord struct {
	Package   string
	Command   string
	Detail    string
	Timestamp time.Time
}

// SyncOptions are the ssh-level knobs for the rsync transport. Each field is
// independently optional; the zero value means "leave it to ssh defaults"
// except Port, which defaults to 22 when unset.
type SyncOptions struct {
	User                string
	Port                int
	StrictHostKeyCheck  string
	ConnectTimeoutSec   int
	ServerAliveInterval int
}

// pacman's package name grammar: alphanumerics plus @ . _ + -, and the first
// character may not be a hyphen or dot.
var packageNameRe = regexp.MustCompile(`^[a-zA-Z0-9@._+][a-zA-Z0-9@._+-]*$`)

// ValidatePackageName rejects names that could escape the working tree or
// smuggle option-looking arguments into external commands.
func ValidatePackageName(name string) error {
	if packageNameRe.MatchString(name) && name[0] != '-' && name[0] != '.' {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid package name: " + name)
}
