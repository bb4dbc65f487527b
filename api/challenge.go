package api

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmcleod/authbox/internal/util"
)

// NewsChallenge is one knowledge question issued to the person at the
// kiosk. Answer never leaves the server.
type NewsChallenge struct {
	Question  string
	Options   []string
	NewsTitle string
	Answer    string
}

// ChallengeSource issues the current OTP challenge. The production source
// crawls the day's news and asks for the article's reporter; QuizBank is
// the offline stand-in.
type ChallengeSource interface {
	Challenge(ctx context.Context) (NewsChallenge, error)
}

// QuizBank cycles through a fixed set of challenges. Deterministic order
// so a retry after a wrong answer gets a different question.
type QuizBank struct {
	mu   sync.Mutex
	next int
	set  []NewsChallenge
}

// NewQuizBank returns a bank seeded with the built-in question set.
func NewQuizBank() *QuizBank {
	return &QuizBank{set: builtinChallenges()}
}

func (b *QuizBank) Challenge(ctx context.Context) (NewsChallenge, error) {
	if err := ctx.Err(); err != nil {
		return NewsChallenge{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.set) == 0 {
		return NewsChallenge{}, fmt.Errorf("challenge bank is empty")
	}
	c := b.set[b.next%len(b.set)]
	b.next++
	return c, nil
}

// answerMatches compares a submitted answer to the expected one,
// tolerating option prefixes ("B. Seoul" for "Seoul") and width variants
// from the kiosk keypad.
func answerMatches(expected, submitted string) bool {
	norm := func(s string) string {
		s = util.Normalize(s)
		s = strings.TrimSpace(s)
		if i := strings.Index(s, ". "); i == 1 {
			s = s[i+2:]
		}
		return strings.ToLower(s)
	}
	return norm(expected) == norm(submitted) && norm(submitted) != ""
}

func builtinChallenges() []NewsChallenge {
	return []NewsChallenge{
		{
			Question:  "What is the capital of South Korea?",
			Options:   []string{"A. Busan", "B. Seoul", "C. Incheon", "D. Daejeon"},
			NewsTitle: "Offline question set",
			Answer:    "B. Seoul",
		},
		{
			Question:  "Which river runs through Seoul?",
			Options:   []string{"A. Nakdong", "B. Geum", "C. Han", "D. Yeongsan"},
			NewsTitle: "Offline question set",
			Answer:    "C. Han",
		},
		{
			Question:  "How many digits does a Korean postal code have?",
			Options:   []string{"A. 4", "B. 5", "C. 6", "D. 7"},
			NewsTitle: "Offline question set",
			Answer:    "B. 5",
		},
	}
}
