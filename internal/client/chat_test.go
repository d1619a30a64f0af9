package client

import "testing"

func TestValidateQueryCompositionRejectsShortQuery(t *testing.T) {
	chatHasOutput = false
	if err := validateQueryComposition("x", ""); err == nil {
		t.Fatal("expected an error for a one-character query")
	}
}

func TestValidateQueryCompositionRejectsShortStdin(t *testing.T) {
	chatHasOutput = false
	if err := validateQueryComposition("", "x"); err == nil {
		t.Fatal("expected an error for one-character stdin")
	}
}

func TestValidateQueryCompositionAcceptsEmptyInputs(t *testing.T) {
	chatHasOutput = false
	if err := validateQueryComposition("", ""); err != nil {
		t.Errorf("unexpected error for empty inputs: %v", err)
	}
}

func TestValidateQueryCompositionRequiresActiveCaptureForWithOutput(t *testing.T) {
	chatHasOutput = true
	defer func() { chatHasOutput = false }()

	if err := validateQueryComposition("how do I list files", ""); err == nil {
		t.Fatal("expected an error when -w is set without an active capture session")
	}
}

func TestAbs(t *testing.T) {
	cases := map[int]int{-3: 3, 0: 0, 5: 5}
	for in, want := range cases {
		if got := abs(in); got != want {
			t.Errorf("abs(%d) = %d, want %d", in, got, want)
		}
	}
}
