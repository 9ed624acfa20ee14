package sigcheck

// cacheSigResult is the Result Cache (spec.md §4.4): it records the outcome
// of a single verification attempt into s.Flags, preserving the invariant
// that only BadSignature poisons the cache as "proven invalid" — every
// other error leaves the signature unchecked so the next call retries.
func cacheSigResult(s *Signature, err error) {
	switch {
	case err == nil:
		s.Flags.Checked = true
		s.Flags.Valid = true
	case IsBadSignature(err):
		s.Flags.Checked = true
		s.Flags.Valid = false
	default:
		s.Flags.Checked = false
		s.Flags.Valid = false
	}
}

// cacheHit reports whether s's cached result can be trusted for a fast
// path, i.e. the cache is enabled and the signature was already checked.
func cacheHit(opts *Options, s *Signature) bool {
	return !opts.NoSigCache && s.Flags.Checked
}
