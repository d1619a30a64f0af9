package contextassembler

import (
	"strings"
	"testing"
)

func TestAssembleRule1AllFourDropsStdin(t *testing.T) {
	got, err := Assemble(Input{Question: "why", Stdin: "ignored-stdin", Attachment: "attach", TerminalOutput: "term"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "why attach" {
		t.Errorf("Assemble = %q, want %q", got, "why attach")
	}
	if strings.Contains(got, "ignored-stdin") {
		t.Errorf("expected stdin to be dropped when all four inputs are present, got %q", got)
	}
}

func TestAssembleRule2QuestionAttachmentTerminal(t *testing.T) {
	got, err := Assemble(Input{Question: "why", Attachment: "attach", TerminalOutput: "term"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "why attach term" {
		t.Errorf("Assemble = %q, want %q", got, "why attach term")
	}
}

func TestAssembleRule3QuestionTerminal(t *testing.T) {
	got, err := Assemble(Input{Question: "why", TerminalOutput: "term"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "why term" {
		t.Errorf("Assemble = %q, want %q", got, "why term")
	}
}

func TestAssembleRule4QuestionAttachment(t *testing.T) {
	got, err := Assemble(Input{Question: "why", Attachment: "attach"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "why attach" {
		t.Errorf("Assemble = %q, want %q", got, "why attach")
	}
}

func TestAssembleRule5StdinAttachment(t *testing.T) {
	got, err := Assemble(Input{Stdin: "piped", Attachment: "attach"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "piped attach" {
		t.Errorf("Assemble = %q, want %q", got, "piped attach")
	}
}

func TestAssembleRule6StdinQuestionOrdersQuestionFirst(t *testing.T) {
	got, err := Assemble(Input{Stdin: "piped", Question: "why"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "why piped" {
		t.Errorf("Assemble = %q, want %q", got, "why piped")
	}
}

func TestAssembleRule7FallsBackToFirstNonEmpty(t *testing.T) {
	got, err := Assemble(Input{TerminalOutput: "term"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "term" {
		t.Errorf("Assemble = %q, want %q", got, "term")
	}
}

func TestAssembleEmptyInputFails(t *testing.T) {
	if _, err := Assemble(Input{}); err != ErrEmptyInput {
		t.Errorf("Assemble(empty) = %v, want ErrEmptyInput", err)
	}
}

func TestAssembleTruncatesOversizedPrompt(t *testing.T) {
	huge := strings.Repeat("x", MaxQuestionSize+500)
	got, err := Assemble(Input{Question: huge})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != MaxQuestionSize {
		t.Errorf("len(Assemble) = %d, want %d", len(got), MaxQuestionSize)
	}
}

func TestValidateRejectsShortQuestion(t *testing.T) {
	if err := Validate("a", ""); err != ErrQuestionTooShort {
		t.Errorf("Validate(\"a\", \"\") = %v, want ErrQuestionTooShort", err)
	}
}

func TestValidateRejectsShortStdin(t *testing.T) {
	if err := Validate("", "a"); err != ErrStdinTooShort {
		t.Errorf("Validate(\"\", \"a\") = %v, want ErrStdinTooShort", err)
	}
}

func TestValidateAllowsEmptyInputs(t *testing.T) {
	if err := Validate("", ""); err != nil {
		t.Errorf("Validate(\"\", \"\") = %v, want nil", err)
	}
}

func TestValidateAllowsLongEnoughInputs(t *testing.T) {
	if err := Validate("hi", "ok"); err != nil {
		t.Errorf("Validate(\"hi\", \"ok\") = %v, want nil", err)
	}
}
