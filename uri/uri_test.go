package uri

import "testing"

func TestParsePlainPath(t *testing.T) {
	u, err := Parse("/data/sample.cool")
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/data/sample.cool" || u.Resolution != 0 || u.Cell != "" {
		t.Fatalf("unexpected parse: %+v", u)
	}
}

func TestParseResolutionGroup(t *testing.T) {
	u, err := Parse("/data/sample.mcool::/resolutions/1000")
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/data/sample.mcool" || u.Resolution != 1000 {
		t.Fatalf("unexpected parse: %+v", u)
	}
}

func TestParseCellGroup(t *testing.T) {
	u, err := Parse("/data/sample.scool::/cells/cellA")
	if err != nil {
		t.Fatal(err)
	}
	if u.Cell != "cellA" {
		t.Fatalf("unexpected parse: %+v", u)
	}
}

func TestParseRoundTripsString(t *testing.T) {
	s := "/data/sample.mcool::/resolutions/1000"
	u, err := Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != s {
		t.Fatalf("got %q, want %q", u.String(), s)
	}
}

func TestParseBadResolutionGroup(t *testing.T) {
	if _, err := Parse("/data/sample.mcool::/resolutions/notanumber"); err == nil {
		t.Fatal("expected an error for a non-numeric resolution")
	}
}
