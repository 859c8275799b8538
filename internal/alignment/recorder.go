package alignment

// Decision is one pairing attempt made by the matcher.
type Decision struct {
	WordIndex  int
	Word       string
	TokenIndex int
	Token      string
	First      int
	Last       int
	Start      float64
	End        float64
	Kind       Kind
	Accepted   bool
	Reason     string
}

// Resolved reports whether the decision carries a token range.
func (d Decision) Resolved() bool {
	return d.Accepted && d.First >= 0 && d.Last >= d.First
}

// Recorder receives matcher decisions in the order they are made.
type Recorder interface {
	Record(Decision)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(Decision)

// Record calls f(d).
func (f RecorderFunc) Record(d Decision) { f(d) }

type nopRecorder struct{}

func (nopRecorder) Record(Decision) {}
