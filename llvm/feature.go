package llvm

import (
	"github.com/coreos/go-semver/semver"

	"ember/report"
)

// FeatureSet records which call shapes and intrinsic namespaces the
// negotiated backend version expects.  It is computed once per context and
// consulted by the builder; call sites never test version numbers directly.
type FeatureSet struct {
	version semver.Version

	// MemoryIntrinsicAlignArg indicates that the memory transfer intrinsics
	// take their alignment as an explicit trailing call argument rather than
	// as a parameter attribute.
	MemoryIntrinsicAlignArg bool

	// ExperimentalReductions indicates that the vector reduction intrinsics
	// live under the `llvm.experimental.vector.reduce` prefix.
	ExperimentalReductions bool
}

// Version returns the negotiated backend version.
func (fs FeatureSet) Version() string {
	return fs.version.String()
}

// NegotiateFeatures parses the backend version string and selects the call
// shapes the bridge will emit for it.  An unparseable version is fatal: every
// later emission decision depends on it.
func NegotiateFeatures(backendVersion string) FeatureSet {
	v, err := semver.NewVersion(backendVersion)
	if err != nil {
		report.Fatal("invalid backend version `%s`: %s", backendVersion, err)
	}

	return FeatureSet{
		version:                 *v,
		MemoryIntrinsicAlignArg: v.Major < 7,
		ExperimentalReductions:  v.Major < 12,
	}
}
