// Package challenge implements the anti-automation gate: agent-submitted
// content is published only after a short-lived obfuscated arithmetic
// problem is solved.
package challenge

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"agora/domain/core"

	"github.com/google/uuid"
)

// Status enumerates the lifecycle states of a challenge
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusExpired  Status = "expired"
)

// ContentType names the kind of payload a challenge gates
type ContentType string

const (
	ContentArgument ContentType = "argument"
	ContentVote     ContentType = "vote"
)

// DefaultTTL is the default challenge lifetime
const DefaultTTL = 5 * time.Minute

// Challenge gates one pending submission. It owns a copy of the payload it
// will apply, never a reference that could be mutated concurrently. The
// canonical answer is stored in exactly-two-decimal form and is never
// returned to the caller.
type Challenge struct {
	ID             core.ChallengeID `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	Question       string           `json:"question" db:"question"`
	Answer         string           `json:"-" db:"answer"`
	Status         Status           `json:"status" db:"status"`
	ContentType    ContentType      `json:"content_type" db:"content_type"`
	Payload        []byte           `json:"-" db:"payload"`
	FailedAttempts int              `json:"failed_attempts" db:"failed_attempts"`
	ExpiresAt      time.Time        `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// Ticket is the caller-visible portion of an issued challenge
type Ticket struct {
	Code      string    `json:"code"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Ticket returns the portion of the challenge safe to hand to the caller
func (c *Challenge) Ticket() Ticket {
	return Ticket{Code: c.Code, Question: c.Question, ExpiresAt: c.ExpiresAt}
}

// Outcome is the decision of evaluating a submitted answer
type Outcome int

const (
	OutcomeVerified Outcome = iota
	OutcomeExpired
	OutcomeWrongAnswer
	OutcomeAlreadyProcessed
)

// Evaluate decides what a submitted answer means for this challenge at the
// given instant. Pure: the caller applies the corresponding status
// transition through storage. TTL expiry is evaluated lazily here, there is
// no background timer.
func (c *Challenge) Evaluate(submitted string, now time.Time) Outcome {
	switch c.Status {
	case StatusVerified:
		return OutcomeAlreadyProcessed
	case StatusExpired:
		return OutcomeExpired
	}
	if now.After(c.ExpiresAt) {
		return OutcomeExpired
	}
	norm, err := NormalizeAnswer(submitted)
	if err != nil || norm != c.Answer {
		return OutcomeWrongAnswer
	}
	return OutcomeVerified
}

// NormalizeAnswer coerces a submitted answer to the canonical two-decimal
// numeric form used for comparison
func NormalizeAnswer(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "", core.NewValidationError("answer", "must be numeric")
	}
	return fmt.Sprintf("%.2f", f), nil
}

type operation struct {
	word  string
	apply func(a, b int) int
}

var operations = []operation{
	{"plus", func(a, b int) int { return a + b }},
	{"minus", func(a, b int) int { return a - b }},
	{"times", func(a, b int) int { return a * b }},
}

// Engine issues challenges: a uniformly random arithmetic problem over two
// small non-negative operands, rendered through a pluggable obfuscator.
type Engine struct {
	ttl time.Duration
	obf Obfuscator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine with a time-seeded source
func NewEngine(ttl time.Duration, obf Obfuscator) *Engine {
	return NewEngineWithRand(ttl, obf, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand creates an engine with an explicit source for
// deterministic tests
func NewEngineWithRand(ttl time.Duration, obf Obfuscator, rng *rand.Rand) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if obf == nil {
		obf = Noop{}
	}
	return &Engine{ttl: ttl, obf: obf, rng: rng}
}

// TTL returns the configured challenge lifetime
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// Issue generates a pending challenge holding a copy of the payload. The
// operands stay small (0-12) and subtraction is ordered so the answer is
// never negative.
func (e *Engine) Issue(contentType ContentType, payload []byte, now time.Time) *Challenge {
	e.mu.Lock()
	a := e.rng.Intn(13)
	b := e.rng.Intn(13)
	op := operations[e.rng.Intn(len(operations))]
	e.mu.Unlock()

	if op.word == "minus" && b > a {
		a, b = b, a
	}
	answer := op.apply(a, b)
	question := fmt.Sprintf("what is %s %s %s?", numberWord(a), op.word, numberWord(b))

	owned := make([]byte, len(payload))
	copy(owned, payload)

	return &Challenge{
		ID:          core.ChallengeID(core.NewID()),
		Code:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		Question:    e.obf.Obfuscate(question),
		Answer:      fmt.Sprintf("%.2f", float64(answer)),
		Status:      StatusPending,
		ContentType: contentType,
		Payload:     owned,
		ExpiresAt:   now.Add(e.ttl),
		CreatedAt:   now,
	}
}

var numberWords = []string{
	"zero", "one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "ten", "eleven", "twelve",
}

func numberWord(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return strconv.Itoa(n)
}
