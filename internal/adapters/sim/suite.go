package sim

// Suite bundles one instance of every simulated collaborator.
type Suite struct {
	Classifier *Classifier
	Completer  *Completer
	Retriever  *Retriever
	Calendar   *Calendar
	Escalator  *Escalator
}

// NewSuite constructs the full simulated backend from the embedded
// fixtures.
func NewSuite() (*Suite, error) {
	retriever, err := NewRetriever()
	if err != nil {
		return nil, err
	}
	calendar, err := NewCalendar()
	if err != nil {
		return nil, err
	}
	return &Suite{
		Classifier: NewClassifier(),
		Completer:  NewCompleter(),
		Retriever:  retriever,
		Calendar:   calendar,
		Escalator:  NewEscalator(),
	}, nil
}
