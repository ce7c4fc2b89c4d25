package types

// redactedPlaceholder replaces secret material anywhere a SecretString is
// printed or serialized.
const redactedPlaceholder = "***REDACTED***"

// redactedJSON is the placeholder pre-encoded as a JSON string.
var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds credential material (provider API keys, the database
// URL) that must never surface in logs or response bodies. fmt and JSON
// output both produce a redacted placeholder; Unmask hands back the
// plaintext for the call sites that genuinely need it, such as building an
// Authorization header or a pool connection string.
type SecretString string

// String satisfies fmt.Stringer with the redacted placeholder, so %v/%s
// formatting of config structs stays safe.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON emits the redacted placeholder so config dumps and structured
// log entries cannot carry the secret.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the plaintext. Call sites should be few and deliberate.
func (s SecretString) Unmask() string {
	return string(s)
}
