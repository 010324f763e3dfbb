package value

import "golang.org/x/text/unicode/norm"

// keyGuard tracks the object keys seen in one container during admission.
// Keys are stored byte-exact; the guard only refuses a key whose NFC form
// matches a different key already admitted ("é" next to "é").
type keyGuard map[string]string

func newKeyGuard(n int) keyGuard { return make(keyGuard, n) }

func (g keyGuard) admit(key string, loc *location) error {
	nfc := key
	if !norm.NFC.IsNormalString(key) {
		nfc = norm.NFC.String(key)
	}
	if prev, ok := g[nfc]; ok && prev != key {
		return newCloneError(ErrCodeAmbiguousKey, loc,
			"keys %q and %q are canonically equivalent", prev, key)
	}
	g[nfc] = key
	return nil
}
