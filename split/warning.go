package split

import (
	"fmt"

	"github.com/magneticio/go-common/logging"
)

// WarningKind classifies a non-fatal anomaly met while sampling.
type WarningKind int

const (
	// WarnFallbackUniform: the request was too small for class targets, a plain random sample was drawn.
	WarnFallbackUniform WarningKind = iota
	// WarnZeroTargetRepair: classes whose rounded target was 0 were raised to 1.
	WarnZeroTargetRepair
	// WarnInfeasibleCoverage: fewer images were requested than there are classes, so
	// one coverage-seeking image per class was drawn instead.
	WarnInfeasibleCoverage
	// WarnCoverageUnattainable: the pool cannot supply the classes still missing.
	WarnCoverageUnattainable
	// WarnCoverageShortfall: the training subset misses some classes.
	WarnCoverageShortfall
)

func (k WarningKind) String() string {
	switch k {
	case WarnFallbackUniform:
		return "fallback-uniform"
	case WarnZeroTargetRepair:
		return "zero-target-repair"
	case WarnInfeasibleCoverage:
		return "infeasible-coverage"
	case WarnCoverageUnattainable:
		return "coverage-unattainable"
	case WarnCoverageShortfall:
		return "coverage-shortfall"
	}
	return fmt.Sprintf("warning(%d)", int(k))
}

// Warning is reported alongside a result instead of failing it.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Message
}

func newWarning(kind WarningKind, format string, args ...interface{}) Warning {
	w := Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	logging.Info("WARN: %v\n", w)
	return w
}

// WarningStrings renders warnings for logs and manifests.
func WarningStrings(warnings []Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
