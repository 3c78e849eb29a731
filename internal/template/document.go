// Package template reads and writes the Blind Pick round documents: the loose
// template files consumed at session setup and the canonical authoring
// documents produced by the round editor. The loader accepts either variant.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"blindpick-service/internal/domain"
)

// DocumentType is the type discriminator the round editor writes.
const DocumentType = "blindpick"

// roundRecord is the on-disk shape of a round. The correct answer has two
// accepted keys: the editor writes "truth", older hand-made templates used
// "Richtige Antwort". The legacy key wins when both are present.
type roundRecord struct {
	Title       string `json:"title"`
	Video       string `json:"video"`
	Truth       string `json:"truth"`
	LegacyTruth string `json:"Richtige Antwort,omitempty"`
}

type document struct {
	QuizType string        `json:"quiz_type,omitempty"`
	Rounds   []roundRecord `json:"rounds"`
}

// Decode parses a template or authoring document. Loading is lenient: missing
// titles are synthesized as "Round N" and missing video/truth fields are
// tolerated as empty strings. A document without rounds is a config error.
func Decode(data []byte) ([]domain.RoundTemplate, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if len(doc.Rounds) == 0 {
		return nil, domain.ErrNoRounds
	}
	rounds := make([]domain.RoundTemplate, 0, len(doc.Rounds))
	for i, r := range doc.Rounds {
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Round %d", i+1)
		}
		truth := r.Truth
		if r.LegacyTruth != "" {
			truth = r.LegacyTruth
		}
		rounds = append(rounds, domain.RoundTemplate{Title: title, Video: r.Video, Truth: truth})
	}
	return rounds, nil
}

// Encode serializes rounds as a canonical authoring document. Saving is
// stricter than loading: Validate must pass, and blank titles are defaulted.
func Encode(rounds []domain.RoundTemplate) ([]byte, error) {
	if err := Validate(rounds); err != nil {
		return nil, err
	}
	doc := document{QuizType: DocumentType, Rounds: make([]roundRecord, 0, len(rounds))}
	for i, r := range rounds {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = fmt.Sprintf("Round %d", i+1)
		}
		doc.Rounds = append(doc.Rounds, roundRecord{Title: title, Video: r.Video, Truth: r.Truth})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Validate applies the save-time rules: at least one round, and every round
// needs a video reference and a correct answer.
func Validate(rounds []domain.RoundTemplate) error {
	if len(rounds) == 0 {
		return domain.ErrNoRounds
	}
	for i, r := range rounds {
		if strings.TrimSpace(r.Video) == "" {
			return fmt.Errorf("round %d: video must not be empty", i+1)
		}
		if strings.TrimSpace(r.Truth) == "" {
			return fmt.Errorf("round %d: correct answer must not be empty", i+1)
		}
	}
	return nil
}

// LoadFile reads and decodes a template file from disk.
func LoadFile(path string) ([]domain.RoundTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Decode(data)
}
