package uniqueness

import "testing"

func TestEvaluateRange(t *testing.T) {
	names := []string{
		"", "the", "The Love Fire", "Zzyxquolt Ferntangle",
		"Quantum Penumbra Synthesis", "Fire", "a b c d e f g",
	}
	for _, name := range names {
		s := Evaluate(name, "")
		if s.Value < 0 || s.Value > 1 {
			t.Errorf("Evaluate(%q) = %f out of [0,1]", name, s.Value)
		}
		if s.Band == "" {
			t.Errorf("Evaluate(%q) has empty band", name)
		}
	}
}

func TestEvaluateCommonWordsPenalized(t *testing.T) {
	common := Evaluate("The Love Night", "")
	distinct := Evaluate("Obsidian Chrysalis", "")
	if common.Value >= distinct.Value {
		t.Errorf("common name scored %f, distinctive name %f", common.Value, distinct.Value)
	}
	if common.CommonWordPenalty == 0 {
		t.Error("expected common-word penalty for filler words")
	}
}

func TestEvaluateVocabularyBonus(t *testing.T) {
	s := Evaluate("Quantum Halcyon", "")
	if s.VocabularyBonus == 0 {
		t.Error("expected vocabulary bonus for unusual and technical words")
	}
	if s.Band != BandVeryUnique {
		t.Errorf("expected very-unique band, got %q", s.Band)
	}
}

func TestEvaluateGenreBonus(t *testing.T) {
	with := Evaluate("Iron Wraith Choir", "metal")
	without := Evaluate("Iron Wraith Choir", "")
	if with.GenreBonus == 0 {
		t.Error("expected genre bonus for metal theme words")
	}
	if with.Value < without.Value {
		t.Errorf("genre-relevant name scored %f without genre %f", with.Value, without.Value)
	}
}

func TestEvaluateComplexityBonus(t *testing.T) {
	s := Evaluate("Serpentine Lantern Procession", "")
	if s.ComplexityBonus == 0 {
		t.Error("expected complexity bonus for three long uncommon words")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	s := Evaluate("   ", "")
	if s.Value != 0 || s.Band != BandVeryCommon {
		t.Errorf("empty name: got value %f band %q", s.Value, s.Band)
	}
}

func TestEvaluatePureFunction(t *testing.T) {
	a := Evaluate("Thunderstrike", "rock")
	b := Evaluate("Thunderstrike", "rock")
	if a.Value != b.Value || a.Band != b.Band {
		t.Error("Evaluate is not deterministic")
	}
}
