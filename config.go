package sigcheck

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Options holds the ambient configuration inputs spec.md §6 says this core
// reads "by reference" from caller-owned settings. It plays the role
// oci/signature's Policy plays for Cosign verification: a single struct
// built once via functional options and passed down into every call.
type Options struct {
	// IgnoreTimeConflict disables the TimeConflict failure from the
	// Metadata Validator (C2) when the signer key appears newer than the
	// signature or was created in the future.
	IgnoreTimeConflict bool

	// RequireCrossCert turns a subkey's missing back-signature into a hard
	// failure (ErrGeneral) instead of a warning (C6 step 7). An invalid
	// back-signature fails with ErrGeneral whether or not this is set.
	RequireCrossCert bool

	// AllowWeakDigestAlgos disables the weak-digest gate entirely.
	AllowWeakDigestAlgos bool

	// weakDigestPatterns are compiled glob patterns (e.g. "MD*", "SHA1")
	// over DigestAlgo.String() names; a match rejects the digest algorithm
	// with ErrUnsupportedAlgorithm unless AllowWeakDigestAlgos is set.
	weakDigestPatterns []glob.Glob
	weakDigestSource   []string

	// NoSigCache disables the Result Cache (C4) fast paths entirely: every
	// verification re-runs the full crypto check.
	NoSigCache bool

	// Verbose and Quiet control log volume only (spec.md §6: "log-verbosity
	// only, no behavior change").
	Verbose bool
	Quiet   bool

	// Logger receives diagnostic messages. Defaults to a no-op logger.
	Logger Logger

	// FixCacheFastPathSigner fixes the known source bug (spec.md §4.7,
	// §9) where the key-signature dispatcher's cache fast path validates
	// metadata against the primary key even for non-self-signatures.
	// Default false replicates the original (buggy) behavior.
	FixCacheFastPathSigner bool

	// StrictUIDSigners requires a UID-certification's externally-looked-up
	// signer to actually appear in the keyblock being verified (spec.md
	// §9 Open Question). Default false matches the original GnuPG
	// behavior of trusting any key database hit.
	StrictUIDSigners bool
}

// VerifyOption is a functional option for Options, following the shape of
// oci/signature's VerifierOption.
type VerifyOption func(*Options)

// NewOptions builds an Options with spec.md's defaults: time conflicts are
// enforced, cross-certification is a warning not a failure, the result
// cache is enabled, and logging is silent.
func NewOptions(opts ...VerifyOption) *Options {
	o := &Options{
		Logger: NewNopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithIgnoreTimeConflict sets IgnoreTimeConflict.
func WithIgnoreTimeConflict(v bool) VerifyOption {
	return func(o *Options) { o.IgnoreTimeConflict = v }
}

// WithRequireCrossCert sets RequireCrossCert.
func WithRequireCrossCert(v bool) VerifyOption {
	return func(o *Options) { o.RequireCrossCert = v }
}

// WithAllowWeakDigestAlgos sets AllowWeakDigestAlgos.
func WithAllowWeakDigestAlgos(v bool) VerifyOption {
	return func(o *Options) { o.AllowWeakDigestAlgos = v }
}

// WithWeakDigestPatterns compiles and installs glob patterns (e.g. "MD*",
// "SHA1") matched against DigestAlgo.String() to reject weak digest
// algorithms (spec.md §6's weak_digests[] list, expanded in SPEC_FULL.md §4
// to use glob matching, grounded on oci/signature/policy.go's identity
// glob patterns). Invalid patterns are dropped silently, matching the
// teacher's isValidGlobPattern fail-closed-per-pattern behavior.
func WithWeakDigestPatterns(patterns ...string) VerifyOption {
	return func(o *Options) {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				continue
			}
			o.weakDigestPatterns = append(o.weakDigestPatterns, g)
			o.weakDigestSource = append(o.weakDigestSource, p)
		}
	}
}

// WithNoSigCache sets NoSigCache.
func WithNoSigCache(v bool) VerifyOption {
	return func(o *Options) { o.NoSigCache = v }
}

// WithVerbose sets Verbose.
func WithVerbose(v bool) VerifyOption {
	return func(o *Options) { o.Verbose = v }
}

// WithQuiet sets Quiet.
func WithQuiet(v bool) VerifyOption {
	return func(o *Options) { o.Quiet = v }
}

// WithLogger installs a custom Logger. Combine with WithVerbose/WithQuiet
// if the logger itself should be level-filtered by this package.
func WithLogger(l Logger) VerifyOption {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithFixCacheFastPathSigner sets FixCacheFastPathSigner.
func WithFixCacheFastPathSigner(v bool) VerifyOption {
	return func(o *Options) { o.FixCacheFastPathSigner = v }
}

// WithStrictUIDSigners sets StrictUIDSigners.
func WithStrictUIDSigners(v bool) VerifyOption {
	return func(o *Options) { o.StrictUIDSigners = v }
}

// isWeakDigest reports whether algo's name matches any configured weak
// pattern. Mirrors oci/signature/policy.go's matchesGlobPattern loop.
func (o *Options) isWeakDigest(algo DigestAlgo) bool {
	if o.AllowWeakDigestAlgos || len(o.weakDigestPatterns) == 0 {
		return false
	}
	name := algo.String()
	for _, g := range o.weakDigestPatterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (o *Options) logger() Logger {
	if o == nil || o.Logger == nil || o.Quiet {
		return NewNopLogger()
	}
	return o.Logger
}

// String renders the installed weak-digest patterns for diagnostics.
func (o *Options) String() string {
	return fmt.Sprintf("Options{ignoreTimeConflict=%v requireCrossCert=%v weakDigests=%v noSigCache=%v}",
		o.IgnoreTimeConflict, o.RequireCrossCert, o.weakDigestSource, o.NoSigCache)
}
