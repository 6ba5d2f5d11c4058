package diagnostic

// Collector accumulates non-fatal diagnostics during a single phase
// call and is returned alongside that phase's successful result,
// mirroring the teacher's pattern of returning an aggregate alongside
// a successful query (query.Reducer's Reduce building one Result out
// of many sub-Results).
type Collector struct {
	warnings []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Warn(d Diagnostic) {
	d.Severity = SeverityWarning
	c.warnings = append(c.warnings, d)
}

func (c *Collector) Warnings() []Diagnostic {
	return c.warnings
}

func (c *Collector) HasWarnings() bool {
	return len(c.warnings) > 0
}

// Merge appends another collector's warnings after c's own, preserving
// their order (spec.md §5: "Diagnostic order is stable").
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.warnings = append(c.warnings, other.warnings...)
}
