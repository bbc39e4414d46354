package normalize

// Text returns raw, or fallback when raw is empty. No other cleanup is done;
// categorical values keep the spelling of the source file.
func Text(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return raw
}
