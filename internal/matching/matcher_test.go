package matching

import (
	"reflect"
	"testing"
)

func TestMatchesRequiresAuthorToken(t *testing.T) {
	if Matches("Horst Fjell", "De schreeuw", "De schreeuw ebook NL") {
		t.Fatal("candidate without author token should not match")
	}
	if !Matches("Horst Fjell", "De schreeuw", "Fjell - De schreeuw (epub)") {
		t.Fatal("candidate with author and title token should match")
	}
}

func TestMatchesFailsClosedWhenAuthorIsAllStopWords(t *testing.T) {
	if Matches("van de", "De schreeuw", "van de schreeuw compleet") {
		t.Fatal("author reduced to zero tokens must never match")
	}
}

func TestMatchesLongTitleNeedsTwoTokens(t *testing.T) {
	author := "Horst Fjell"
	title := "Het geheim onder koude sneeuw" // tokens: geheim, onder, koude, sneeuw

	if Matches(author, title, "Fjell geheim verzameld werk") {
		t.Fatal("one shared title token must be rejected for long titles")
	}
	if !Matches(author, title, "Fjell - geheim onder nul") {
		t.Fatal("two shared title tokens must be accepted")
	}
	if !Matches(author, title, "Fjell geheim koude sneeuw editie") {
		t.Fatal("three shared title tokens must be accepted")
	}
}

func TestMatchesShortTitleNeedsOneToken(t *testing.T) {
	if !Matches("Horst Fjell", "De schreeuw", "Fjell schreeuw herdruk") {
		t.Fatal("short title with one shared token must match")
	}
	if Matches("Horst Fjell", "De schreeuw", "Fjell verzamelde gedichten") {
		t.Fatal("short title with zero shared tokens must not match")
	}
}

func TestVariantsOrderAndDeduplication(t *testing.T) {
	got := Variants("Horst Fjell", "De schreeuw")
	want := []string{
		"Horst Fjell De schreeuw",
		"De schreeuw Horst Fjell",
		"De schreeuw",
		"Horst Fjell",
		"schreeuw",
		"Fjell De schreeuw",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %#v, want %#v", got, want)
	}
}

func TestVariantsSingleWordInputs(t *testing.T) {
	got := Variants("Mulisch", "Aanslag")
	want := []string{
		"Mulisch Aanslag",
		"Aanslag Mulisch",
		"Aanslag",
		"Mulisch",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %#v, want %#v", got, want)
	}
}

func TestVariantsEmptyInputs(t *testing.T) {
	if got := Variants("", ""); len(got) != 0 {
		t.Fatalf("expected no variants for empty input, got %#v", got)
	}
	got := Variants("", "Titel")
	want := []string{"Titel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %#v, want %#v", got, want)
	}
}

func TestVariantsDeduplicatesCaseInsensitively(t *testing.T) {
	got := Variants("Schreeuw", "schreeuw")
	want := []string{"Schreeuw schreeuw", "schreeuw"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %#v, want %#v", got, want)
	}
}
