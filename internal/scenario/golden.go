package scenario

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir holds the golden traces, relative to the test's package.
const GoldenDir = "testdata/golden"

// AssertGolden replays sc and compares its trace with
// testdata/golden/<name>.golden. Run the test with -update to rewrite the
// golden file.
func AssertGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, []byte(res.Text()))

	return res
}
