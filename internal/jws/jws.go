package jws

// jws.go - the public entry points for signing and verifying structured messages
//
// both operations read the algorithm identifier from header["alg"], resolve
// it through the registry, build the signing input and delegate to the
// resolved implementation. There is no state beyond the registry: each call
// either completes or fails synchronously, with no retries and no partial
// results.

// Sign signs the header and payload with the algorithm named by header["alg"]
// and returns the raw signature bytes.
//
// The signature is not transport-encoded - assembling the compact form is the
// codec's and caller's job.
func (r *Registry) Sign(header, payload map[string]any, key any) ([]byte, error) {
	identifier, err := headerAlgorithm(header)
	if err != nil {
		return nil, err
	}

	alg, err := r.Resolve(identifier)
	if err != nil {
		return nil, err
	}

	input, err := SigningInput(header, payload)
	if err != nil {
		return nil, err
	}

	return alg.Sign(input, key)
}

// Verify checks the signature over the header and payload with the algorithm
// named by header["alg"].
//
// A nil return means the signature is valid. Every verification failure
// (wrong key, tampered message, malformed signature bytes, a custom
// algorithm's declared failure) is returned with code ErrCodeBadSignature -
// never a silent false.
func (r *Registry) Verify(header, payload map[string]any, signature []byte, key any) error {
	identifier, err := headerAlgorithm(header)
	if err != nil {
		return err
	}

	alg, err := r.Resolve(identifier)
	if err != nil {
		return err
	}

	input, err := SigningInput(header, payload)
	if err != nil {
		return err
	}

	if err := alg.Verify(input, signature, key); err != nil {
		if IsSignatureError(err) {
			return err
		}
		// custom implementations may fail with arbitrary errors - on the
		// verify path they all mean "do not trust this message"
		return WrapSignatureError(err, "could not validate signature")
	}
	return nil
}

// headerAlgorithm extracts the required alg parameter from the header.
func headerAlgorithm(header map[string]any) (string, error) {
	raw, ok := header["alg"]
	if !ok {
		return "", NewInvalidHeaderError("header must have an alg parameter")
	}

	identifier, ok := raw.(string)
	if !ok {
		return "", NewInvalidHeaderError("header alg parameter must be a string")
	}

	return identifier, nil
}

// defaultRegistry serves the package-level API. Custom registrations are
// process-wide, matching the expected init-before-traffic lifecycle.
var defaultRegistry = NewRegistry()

// Sign signs header and payload using the process-wide registry.
func Sign(header, payload map[string]any, key any) ([]byte, error) {
	return defaultRegistry.Sign(header, payload, key)
}

// Verify verifies a signature using the process-wide registry.
func Verify(header, payload map[string]any, signature []byte, key any) error {
	return defaultRegistry.Verify(header, payload, signature, key)
}

// Register adds a custom algorithm binding to the process-wide registry.
func Register(pattern string, factory Factory) error {
	return defaultRegistry.Register(pattern, factory)
}
