package nodes

import (
	"fmt"
	"time"

	"github.com/Dima11235813/wellness-clinic-agent/internal/testutils"
)

// testDeps builds a Deps with deterministic ids and time plus stub
// collaborators the individual tests override.
func testDeps() (Deps, *testutils.StubClassifier, *testutils.StubCompleter, *testutils.StubRetriever, *testutils.StubCalendar, *testutils.StubEscalator) {
	classifier := &testutils.StubClassifier{}
	completer := &testutils.StubCompleter{}
	retriever := &testutils.StubRetriever{}
	calendar := &testutils.StubCalendar{}
	escalator := &testutils.StubEscalator{}

	seq := 0
	deps := Deps{
		Classifier: classifier,
		Completer:  completer,
		Retriever:  retriever,
		Calendar:   calendar,
		Escalator:  escalator,
		Clock: func() time.Time {
			return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}.WithDefaults()
	return deps, classifier, completer, retriever, calendar, escalator
}
