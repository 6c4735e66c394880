package challenge

import (
	"math/rand"
	"strings"
	"sync"
)

// Obfuscator mangles a question's display text so a naive string-equality
// check cannot strip it while a capable reader still can. Swappable so
// alternative anti-automation schemes never touch eligibility or
// state-machine logic.
type Obfuscator interface {
	Obfuscate(text string) string
}

// Noop passes text through unchanged. Used in tests.
type Noop struct{}

func (Noop) Obfuscate(text string) string { return text }

// symbol substitutions applied probabilistically per character
var leetRunes = map[rune][]rune{
	'a': {'4', '@'},
	'e': {'3'},
	'i': {'1', '!'},
	'o': {'0'},
	's': {'5', '$'},
	't': {'7'},
	'u': {'v'},
}

// Leet mangles text with case flips, symbol substitutions and spacing
// noise. Safe for concurrent use.
type Leet struct {
	mu  sync.Mutex
	rng *rand.Rand
	// SubstituteRate is the chance a substitutable rune is replaced,
	// FlipRate the chance a letter's case flips, PadRate the chance a
	// space doubles. All in [0,1].
	SubstituteRate float64
	FlipRate       float64
	PadRate        float64
}

// NewLeet creates a leetspeak obfuscator with moderate noise
func NewLeet(seed int64) *Leet {
	return &Leet{
		rng:            rand.New(rand.NewSource(seed)),
		SubstituteRate: 0.5,
		FlipRate:       0.4,
		PadRate:        0.3,
	}
}

// Obfuscate mangles the text. Digits and punctuation pass through so the
// arithmetic itself stays readable.
func (l *Leet) Obfuscate(text string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r == ' ':
			b.WriteRune(' ')
			if l.rng.Float64() < l.PadRate {
				b.WriteRune(' ')
			}
		case r >= 'a' && r <= 'z':
			if subs, ok := leetRunes[r]; ok && l.rng.Float64() < l.SubstituteRate {
				b.WriteRune(subs[l.rng.Intn(len(subs))])
				continue
			}
			if l.rng.Float64() < l.FlipRate {
				b.WriteRune(r - 'a' + 'A')
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
