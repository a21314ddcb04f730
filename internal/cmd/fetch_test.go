package cmd

import "testing"

func TestParseBBox(t *testing.T) {
	bbox, err := parseBBox("9.7,52.3,9.9,52.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [4]float64{9.7, 52.3, 9.9, 52.4}
	if bbox != want {
		t.Errorf("got %v, want %v", bbox, want)
	}

	// Whitespace around components is tolerated.
	if _, err := parseBBox(" 9.7, 52.3 ,9.9, 52.4 "); err != nil {
		t.Errorf("whitespace should be tolerated: %v", err)
	}

	bad := []string{
		"",
		"9.7,52.3,9.9",
		"a,b,c,d",
		"9.9,52.3,9.7,52.4", // min >= max
		"9.7,52.4,9.9,52.3",
	}
	for _, s := range bad {
		if _, err := parseBBox(s); err == nil {
			t.Errorf("parseBBox(%q) should fail", s)
		}
	}
}
