package ethkey

import "strings"

// Verdict is the classification of a key submission.
type Verdict int

const (
	Unrecognized Verdict = iota
	PublicKey
	Address
	PrivateKey
)

func (v Verdict) String() string {
	switch v {
	case PublicKey:
		return "public_key"
	case Address:
		return "address"
	case PrivateKey:
		return "private_key"
	default:
		return "unrecognized"
	}
}

// User-facing messages per verdict.
const (
	MsgUnrecognized = "Looks like you entered a non-Ethereum private key to access me."
	MsgPublicKey    = "Looks like you entered the public key of my ethereum wallet!"
	MsgAddress      = "Looks like you entered the public address of my ethereum wallet!"
	MsgSolved       = "Challenge successfully solved"
)

// Message returns the response text for v.
func (v Verdict) Message() string {
	switch v {
	case PublicKey:
		return MsgPublicKey
	case Address:
		return MsgAddress
	case PrivateKey:
		return MsgSolved
	default:
		return MsgUnrecognized
	}
}

// Wallet is the reference key material the classifier compares against.
type Wallet struct {
	PrivateKey string
	PublicKey  string
	Address    string
}

// Rule is one step of the classification. Match receives the normalized
// submission and its detected kind.
type Rule struct {
	Name    string
	Match   func(normalized string, kind Kind) bool
	Verdict Verdict
}

// Classifier evaluates its rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the rule chain for w. The private key match runs
// before the public key and address matches, and the public key before the
// address.
func NewClassifier(w Wallet) *Classifier {
	priv, pub, addr := Normalize(w.PrivateKey), Normalize(w.PublicKey), Normalize(w.Address)
	equals := func(ref string) func(string, Kind) bool {
		return func(n string, _ Kind) bool { return ref != "" && n == ref }
	}
	pubKey := canonicalPublicKey(pub)
	return &Classifier{rules: []Rule{
		{Name: "empty", Match: func(n string, _ Kind) bool { return n == "" }, Verdict: Unrecognized},
		{Name: "malformed", Match: func(_ string, k Kind) bool { return k == KindUnknown }, Verdict: Unrecognized},
		{Name: "private key", Match: equals(priv), Verdict: PrivateKey},
		{Name: "public key", Match: func(n string, _ Kind) bool {
			return pubKey != "" && canonicalPublicKey(n) == pubKey
		}, Verdict: PublicKey},
		{Name: "address", Match: equals(addr), Verdict: Address},
	}}
}

// Rules returns a copy of the rule chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the verdict for a raw submission.
func (c *Classifier) Classify(submission string) Verdict {
	n := Normalize(submission)
	k := Detect(submission)
	for _, r := range c.rules {
		if r.Match(n, k) {
			return r.Verdict
		}
	}
	return Unrecognized
}

// canonicalPublicKey drops the 04 marker of an uncompressed SEC1 key so the
// prefixed and raw 64-byte forms compare equal. n must be normalized.
func canonicalPublicKey(n string) string {
	if len(n) == 2*publicKeyPrefixLen && strings.HasPrefix(n, "04") {
		return n[2:]
	}
	return n
}
