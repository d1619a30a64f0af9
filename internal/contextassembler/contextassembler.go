// Package contextassembler composes a bounded prompt out of the several
// places a question's context can come from (spec.md §4.E), transcribing
// original_source/commands/chat.py's InputSource.get_input_source.
package contextassembler

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/command-line-assistant/clad/internal/logging"
)

// MaxQuestionSize is the size cap the assembled prompt is truncated to
// (spec.md §4.E "Size cap").
const MaxQuestionSize = 32_000

// MinInputLength is the shortest a trimmed question or stdin value may be
// (spec.md §4.E "Validation").
const MinInputLength = 2

// ErrEmptyInput is returned when question, stdin, attachment and terminal
// output are all empty (the attachment mimetype alone does not count).
var ErrEmptyInput = errors.New("contextassembler: no input provided; please provide input via file, stdin, or direct query")

// ErrQuestionTooShort and ErrStdinTooShort are returned by Validate when
// the respective trimmed input is shorter than MinInputLength.
var (
	ErrQuestionTooShort = errors.New("contextassembler: question must be at least 2 characters")
	ErrStdinTooShort    = errors.New("contextassembler: stdin input must be at least 2 characters")
)

// Input bundles the five context sources spec.md §4.E combines.
type Input struct {
	Question           string
	Stdin              string
	Attachment         string
	AttachmentMimetype string
	TerminalOutput     string
}

// Validate rejects a question or stdin value that, after trimming, is
// shorter than MinInputLength. Empty values are allowed (they simply
// don't participate in combination); only a too-short-but-nonempty value
// is an error.
func Validate(question, stdin string) error {
	trimmedQuestion := strings.TrimSpace(question)
	if trimmedQuestion != "" && len(trimmedQuestion) < MinInputLength {
		return ErrQuestionTooShort
	}
	trimmedStdin := strings.TrimSpace(stdin)
	if trimmedStdin != "" && len(trimmedStdin) < MinInputLength {
		return ErrStdinTooShort
	}
	return nil
}

// Assemble combines the five inputs into one prompt string following the
// seven ordered combination rules (spec.md §4.E), then truncates it to
// MaxQuestionSize bytes, logging a human-readable warning if truncation
// occurred.
func Assemble(in Input) (string, error) {
	combined, err := combine(in)
	if err != nil {
		return "", err
	}
	return truncate(combined), nil
}

func combine(in Input) (string, error) {
	q, s, a, t := in.Question, in.Stdin, in.Attachment, in.TerminalOutput

	switch {
	// Rule 1: all four present — stdin is deliberately dropped.
	case q != "" && s != "" && a != "" && t != "":
		return q + " " + a, nil

	// Rule 2: question + attachment + terminal output.
	case q != "" && a != "" && t != "":
		return q + " " + a + " " + t, nil

	// Rule 3: question + terminal output.
	case q != "" && t != "":
		return q + " " + t, nil

	// Rule 4: question + attachment.
	case q != "" && a != "":
		return q + " " + a, nil

	// Rule 5: stdin + attachment.
	case s != "" && a != "":
		return s + " " + a, nil

	// Rule 6: stdin + question.
	case s != "" && q != "":
		return q + " " + s, nil

	// Rule 7: first non-empty source, in this order.
	default:
		for _, src := range []string{q, s, a, t} {
			if src != "" {
				return src, nil
			}
		}
		return "", ErrEmptyInput
	}
}

func truncate(question string) string {
	if len(question) <= MaxQuestionSize {
		return question
	}

	readable := humanize.Bytes(uint64(len(question)))
	maxReadable := humanize.Bytes(uint64(MaxQuestionSize))
	logging.Log.Warnf(
		"The total size of your question and context (%s) exceeds the limit of %s. Trimming it down to fit in the expected size, you may lose some context.",
		readable, maxReadable,
	)

	return question[:MaxQuestionSize]
}
