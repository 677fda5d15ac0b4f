package catalog_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/mkeskkula/haaldus/internal/catalog"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	_, err := catalog.New(map[string]map[string][]catalog.WordItem{
		"A1": {
			"greetings": {{ID: "w_tere", Text: "Tere"}},
			"food":      {{ID: "w_tere", Text: "Leib"}},
		},
	})
	if err == nil {
		t.Fatal("expected error for duplicate word id, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestNew_RejectsMissingID(t *testing.T) {
	t.Parallel()

	_, err := catalog.New(map[string]map[string][]catalog.WordItem{
		"A1": {"greetings": {{Text: "Tere"}}},
	})
	if err == nil {
		t.Fatal("expected error for missing word id, got nil")
	}
}

func TestNew_FillsLevelAndCategory(t *testing.T) {
	t.Parallel()

	c, err := catalog.New(map[string]map[string][]catalog.WordItem{
		"A2": {"phrases": {{ID: "w_tervist", Text: "Tervist"}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w, ok := c.Find("w_tervist")
	if !ok {
		t.Fatal("Find(w_tervist) returned false")
	}
	if w.Level != "A2" || w.Category != "phrases" {
		t.Errorf("got level %q category %q, want A2/phrases", w.Level, w.Category)
	}
}

func TestPack_UnknownLevel(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default()
	_, err := c.Pack("C2", "", 10)
	if !errors.Is(err, catalog.ErrUnknownLevel) {
		t.Errorf("Pack(C2) error = %v, want ErrUnknownLevel", err)
	}
}

func TestPack_UnknownCategory(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default()
	_, err := c.Pack("A1", "weather", 10)
	if !errors.Is(err, catalog.ErrUnknownCategory) {
		t.Errorf("Pack(A1, weather) error = %v, want ErrUnknownCategory", err)
	}
}

func TestPack_SingleCategory(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default(catalog.WithRand(testRand()))
	pack, err := c.Pack("A1", "food", 2)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if pack.TotalAvailable != 4 {
		t.Errorf("TotalAvailable = %d, want 4", pack.TotalAvailable)
	}
	if len(pack.Items) != 2 {
		t.Errorf("got %d items, want 2", len(pack.Items))
	}
	for _, item := range pack.Items {
		if item.Level != "A1" || item.Category != "food" {
			t.Errorf("item %s has level %q category %q, want A1/food", item.ID, item.Level, item.Category)
		}
	}
}

func TestPack_LimitBeyondPoolReturnsAll(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default(catalog.WithRand(testRand()))
	pack, err := c.Pack("A2", "", 100)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(pack.Items) != pack.TotalAvailable {
		t.Errorf("got %d items, want the whole pool of %d", len(pack.Items), pack.TotalAvailable)
	}
}

func TestPack_AllCategoriesPooled(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default(catalog.WithRand(testRand()))
	pack, err := c.Pack("A1", "", 100)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	// greetings (4) + food (4)
	if pack.TotalAvailable != 8 {
		t.Errorf("TotalAvailable = %d, want 8", pack.TotalAvailable)
	}

	ids := make([]string, len(pack.Items))
	for i, item := range pack.Items {
		ids[i] = item.ID
	}
	slices.Sort(ids)
	if len(slices.Compact(ids)) != len(pack.Items) {
		t.Errorf("pack contains duplicate items: %v", ids)
	}
}

func TestPack_SamplesWithoutReplacement(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default(catalog.WithRand(testRand()))
	seen := map[string]struct{}{}
	for range 20 {
		pack, err := c.Pack("A1", "greetings", 2)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		if pack.Items[0].ID == pack.Items[1].ID {
			t.Fatalf("pack repeated item %s", pack.Items[0].ID)
		}
		for _, item := range pack.Items {
			seen[item.ID] = struct{}{}
		}
	}
	// Over repeated draws sampling should cover the whole pool.
	if len(seen) != 4 {
		t.Errorf("20 draws covered %d of 4 greetings", len(seen))
	}
}

func TestLevelsAndCategories(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default()

	if got := c.Levels(); !slices.Equal(got, []string{"A1", "A2"}) {
		t.Errorf("Levels() = %v, want [A1 A2]", got)
	}

	cats := c.Categories()
	if !slices.Equal(cats["A1"], []string{"food", "greetings"}) {
		t.Errorf("Categories()[A1] = %v, want [food greetings]", cats["A1"])
	}
	if !slices.Equal(cats["A2"], []string{"phrases"}) {
		t.Errorf("Categories()[A2] = %v, want [phrases]", cats["A2"])
	}
}

func TestFindByText(t *testing.T) {
	t.Parallel()

	c, _ := catalog.Default()

	w, ok := c.FindByText("  tere ")
	if !ok || w.ID != "w_tere" {
		t.Errorf("FindByText(tere) = %v, %v; want w_tere, true", w.ID, ok)
	}

	if _, ok := c.FindByText("bonjour"); ok {
		t.Error("FindByText(bonjour) = true, want false")
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	yaml := `
catalog:
  name: Test words
  language: et
levels:
  A1:
    greetings:
      - id: w_tere
        text: Tere
        ipa: "ˈte.re"
        translation: Hello
`
	c, err := catalog.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if _, ok := c.Find("w_tere"); !ok {
		t.Error("loaded catalog is missing w_tere")
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	yaml := `
levels:
  A1:
    greetings:
      - id: w_tere
        text: Tere
        pronunciation: wrong-key
`
	if _, err := catalog.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_EmptyLevels(t *testing.T) {
	t.Parallel()

	if _, err := catalog.LoadFromReader(strings.NewReader("catalog:\n  name: empty\n")); err == nil {
		t.Fatal("expected error for catalog without levels, got nil")
	}
}
