package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/birdquiz/birdquiz/internal/dataset"
	"github.com/birdquiz/birdquiz/internal/quiz"
)

// DefaultPrompt is the question text shown for every image question.
const DefaultPrompt = "この野鳥の名前は何ですか？"

// DefaultCategory labels questions for birds without a family.
const DefaultCategory = "野鳥"

// DefaultCount is the number of questions generated when count <= 0.
const DefaultCount = 10

// DistractorCount is the number of wrong options added to each question.
const DistractorCount = 3

// Source supplies the birds and images questions are built from.
type Source interface {
	// Birds returns all birds, or only those of family when it is non-empty.
	Birds(ctx context.Context, family string) ([]dataset.Bird, error)

	// Bird returns one bird, or an error wrapping quiz.ErrNotFound.
	Bird(ctx context.Context, id string) (dataset.Bird, error)

	// Images returns the active images of a bird.
	Images(ctx context.Context, birdID string) ([]dataset.Image, error)

	// Image returns one image, or an error wrapping quiz.ErrNotFound.
	Image(ctx context.Context, id string) (dataset.Image, error)
}

// Generator samples questions from a Source.
// It is safe for concurrent use.
type Generator struct {
	src Source

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator drawing randomness from rng.
func New(src Source, rng *rand.Rand) *Generator {
	return &Generator{src: src, rng: rng}
}

// NewSeeded creates a Generator with a PCG source seeded from seed.
func NewSeeded(src Source, seed uint64) *Generator {
	return New(src, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate builds up to count questions for birds matching f.
// Birds without images are skipped. It returns an error wrapping
// quiz.ErrNotFound when no question can be built.
func (g *Generator) Generate(ctx context.Context, count int, f quiz.Filter) ([]quiz.Question, error) {
	if count <= 0 {
		count = DefaultCount
	}

	birds, err := g.src.Birds(ctx, f.Category)
	if err != nil {
		return nil, fmt.Errorf("list birds: %w", err)
	}
	if len(birds) == 0 {
		return nil, fmt.Errorf("no birds for category %q: %w", f.Category, quiz.ErrNotFound)
	}

	order := g.perm(len(birds))

	questions := make([]quiz.Question, 0, min(count, len(birds)))
	for _, idx := range order {
		if len(questions) == count {
			break
		}
		bird := birds[idx]

		images, err := g.src.Images(ctx, bird.ID)
		if err != nil {
			return nil, fmt.Errorf("images of %s: %w", bird.ID, err)
		}
		if len(images) == 0 {
			continue
		}
		img := images[g.intN(len(images))]

		questions = append(questions, g.build(bird, img, birds, g.difficulty(f.Difficulty)))
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no birds with images: %w", quiz.ErrNotFound)
	}
	return questions, nil
}

// QuestionByID rebuilds the question identified by id, as issued by Generate.
// Rebuilt questions are medium difficulty with freshly drawn distractors.
func (g *Generator) QuestionByID(ctx context.Context, id string) (quiz.Question, error) {
	birdID, imageID, err := ParseID(id)
	if err != nil {
		return quiz.Question{}, err
	}

	bird, err := g.src.Bird(ctx, birdID)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("bird %s: %w", birdID, err)
	}
	img, err := g.src.Image(ctx, imageID)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("image %s: %w", imageID, err)
	}
	if img.BirdID != bird.ID {
		return quiz.Question{}, fmt.Errorf("image %s does not belong to bird %s: %w", imageID, birdID, quiz.ErrNotFound)
	}

	pool, err := g.src.Birds(ctx, "")
	if err != nil {
		return quiz.Question{}, fmt.Errorf("list birds: %w", err)
	}
	return g.build(bird, img, pool, quiz.DifficultyMedium), nil
}

func (g *Generator) build(bird dataset.Bird, img dataset.Image, pool []dataset.Bird, d quiz.Difficulty) quiz.Question {
	category := bird.Family
	if category == "" {
		category = DefaultCategory
	}
	return quiz.Question{
		ID:            FormatID(bird.ID, img.ID),
		Prompt:        DefaultPrompt,
		ImageURL:      img.URL,
		CorrectAnswer: bird.JapaneseName,
		Options:       g.options(bird, pool),
		Difficulty:    d,
		Category:      category,
		BirdID:        bird.ID,
		ImageID:       img.ID,
	}
}

// options returns the bird's name plus up to DistractorCount other names, shuffled.
func (g *Generator) options(bird dataset.Bird, pool []dataset.Bird) []string {
	seen := map[string]bool{bird.JapaneseName: true}
	opts := []string{bird.JapaneseName}
	for _, idx := range g.perm(len(pool)) {
		if len(opts) == DistractorCount+1 {
			break
		}
		name := pool[idx].JapaneseName
		if pool[idx].ID == bird.ID || seen[name] {
			continue
		}
		seen[name] = true
		opts = append(opts, name)
	}

	g.mu.Lock()
	g.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	g.mu.Unlock()
	return opts
}

func (g *Generator) difficulty(want quiz.Difficulty) quiz.Difficulty {
	switch want {
	case quiz.DifficultyEasy, quiz.DifficultyMedium, quiz.DifficultyHard:
		return want
	}
	return quiz.Difficulties[g.intN(len(quiz.Difficulties))]
}

func (g *Generator) perm(n int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Perm(n)
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// ErrInvalidID is returned by ParseID for malformed question ids.
var ErrInvalidID = errors.New("invalid question id")

// FormatID builds a question id from its bird and image ids. Bird ids never
// contain ':' (the dataset schema forbids it); image ids may.
func FormatID(birdID, imageID string) string {
	return birdID + ":" + imageID
}

// ParseID splits a question id produced by FormatID at its first ':'.
func ParseID(id string) (birdID, imageID string, err error) {
	birdID, imageID, ok := strings.Cut(id, ":")
	if !ok || birdID == "" || imageID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return birdID, imageID, nil
}
