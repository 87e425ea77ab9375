package validation

// CheckSchemaVersion validates a params schema version tag such as "v0.2".
func CheckSchemaVersion(field, v string) error {
	if !schemaVersionPattern.MatchString(v) {
		return Errorf(ErrInvalidField, field, "schema version %q does not match v<major>.<minor>", v)
	}
	return nil
}

// CheckLiteral requires got to equal want exactly.
func CheckLiteral(field, got, want string) error {
	if got != want {
		return Errorf(ErrInvalidField, field, "input should be %q, got %q", want, got)
	}
	return nil
}

// CheckVersionRange requires lo <= v <= hi. A bound of zero on hi means the
// range is open above.
func CheckVersionRange(field string, v, lo, hi int) error {
	if v < lo || (hi > 0 && v > hi) {
		if hi > 0 {
			return Errorf(ErrVersionOutOfRange, field, "version %d is outside the supported range [%d, %d]", v, lo, hi)
		}
		return Errorf(ErrVersionOutOfRange, field, "version %d is below the minimum supported version %d", v, lo)
	}
	return nil
}
