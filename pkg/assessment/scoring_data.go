package assessment

// ScoringData bundles the inputs a scorer may need for one document. Each of
// the four parts is independently optional. Values are immutable; use
// ModifiedCopy to derive a changed bundle.
type ScoringData struct {
	answerKey        Optional[AnswerKey]
	systemOutput     Optional[ArgumentOutput]
	systemLinking    Optional[ResponseLinking]
	referenceLinking Optional[ResponseLinking]
}

// AnswerKey returns the reference annotation, if set.
func (d ScoringData) AnswerKey() Optional[AnswerKey] {
	return d.answerKey
}

// SystemOutput returns the system's argument output, if set.
func (d ScoringData) SystemOutput() Optional[ArgumentOutput] {
	return d.systemOutput
}

// SystemLinking returns the linking produced by the system, if set.
func (d ScoringData) SystemLinking() Optional[ResponseLinking] {
	return d.systemLinking
}

// ReferenceLinking returns the reference linking, if set.
func (d ScoringData) ReferenceLinking() Optional[ResponseLinking] {
	return d.referenceLinking
}

// NewScoringDataBuilder returns a builder with no fields set.
func NewScoringDataBuilder() *ScoringDataBuilder {
	return &ScoringDataBuilder{}
}

// ModifiedCopy returns a builder seeded with exactly the fields present in d.
func (d ScoringData) ModifiedCopy() *ScoringDataBuilder {
	return &ScoringDataBuilder{data: d}
}

// ScoringDataBuilder accumulates the parts of a ScoringData.
//
// Setters panic when handed a zero value: passing a missing part is a
// programming error and is reported where it happens, not at Build time.
type ScoringDataBuilder struct {
	data ScoringData
}

// WithAnswerKey sets the answer key.
func (b *ScoringDataBuilder) WithAnswerKey(key AnswerKey) *ScoringDataBuilder {
	if key.IsZero() {
		panic("assessment: WithAnswerKey called with a zero AnswerKey")
	}
	b.data.answerKey = Some(key)
	return b
}

// WithSystemOutput sets the system output.
func (b *ScoringDataBuilder) WithSystemOutput(output ArgumentOutput) *ScoringDataBuilder {
	if output.IsZero() {
		panic("assessment: WithSystemOutput called with a zero ArgumentOutput")
	}
	b.data.systemOutput = Some(output)
	return b
}

// WithSystemLinking sets the system linking.
func (b *ScoringDataBuilder) WithSystemLinking(linking ResponseLinking) *ScoringDataBuilder {
	if linking.IsZero() {
		panic("assessment: WithSystemLinking called with a zero ResponseLinking")
	}
	b.data.systemLinking = Some(linking)
	return b
}

// WithReferenceLinking sets the reference linking.
func (b *ScoringDataBuilder) WithReferenceLinking(linking ResponseLinking) *ScoringDataBuilder {
	if linking.IsZero() {
		panic("assessment: WithReferenceLinking called with a zero ResponseLinking")
	}
	b.data.referenceLinking = Some(linking)
	return b
}

// Build returns the bundle. The builder may keep being used afterwards
// without affecting the returned value.
func (b *ScoringDataBuilder) Build() ScoringData {
	return b.data
}
