package codec

import (
	"encoding/json"
	"strings"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Codec encodes system output and answer keys to bytes and back. Decoders
// are given the doc id the document was stored under.
type Codec interface {
	// Name is the format name, e.g. "yaml".
	Name() string
	// Extension is the file extension used by directory stores.
	Extension() string

	EncodeSystemOutput(output assessment.ArgumentOutput) ([]byte, error)
	DecodeSystemOutput(docID assessment.DocID, data []byte) (assessment.ArgumentOutput, error)
	EncodeAnswerKey(key assessment.AnswerKey, updatedAt utc.Time) ([]byte, error)
	DecodeAnswerKey(docID assessment.DocID, data []byte) (assessment.AnswerKey, error)
}

// ForName returns the codec for "yaml", "json" or "tsv".
func ForName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return YAML{}, nil
	case "json":
		return JSON{}, nil
	case "tsv":
		return TSV{}, nil
	default:
		return nil, errors.NewValidationError("format", name, "no codec for format")
	}
}

// YAML stores documents as YAML.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return "yaml" }

// Extension implements Codec.
func (YAML) Extension() string { return ".yaml" }

func (YAML) marshal(v any) ([]byte, error) {
	return yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
}

// EncodeSystemOutput implements Codec.
func (c YAML) EncodeSystemOutput(output assessment.ArgumentOutput) ([]byte, error) {
	return c.marshal(NewSystemOutputDocument(output))
}

// DecodeSystemOutput implements Codec.
func (c YAML) DecodeSystemOutput(docID assessment.DocID, data []byte) (assessment.ArgumentOutput, error) {
	var doc SystemOutputDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return assessment.ArgumentOutput{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	output, err := doc.ArgumentOutput(docID)
	if err != nil {
		return assessment.ArgumentOutput{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return output, nil
}

// EncodeAnswerKey implements Codec.
func (c YAML) EncodeAnswerKey(key assessment.AnswerKey, updatedAt utc.Time) ([]byte, error) {
	return c.marshal(NewAnswerKeyDocument(key, updatedAt))
}

// DecodeAnswerKey implements Codec.
func (c YAML) DecodeAnswerKey(docID assessment.DocID, data []byte) (assessment.AnswerKey, error) {
	var doc AnswerKeyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return assessment.AnswerKey{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	key, err := doc.AnswerKey(docID)
	if err != nil {
		return assessment.AnswerKey{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return key, nil
}

// JSON stores documents as indented JSON. The redis and postgres backends
// always use it.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Extension implements Codec.
func (JSON) Extension() string { return ".json" }

// EncodeSystemOutput implements Codec.
func (JSON) EncodeSystemOutput(output assessment.ArgumentOutput) ([]byte, error) {
	return json.MarshalIndent(NewSystemOutputDocument(output), "", "  ")
}

// DecodeSystemOutput implements Codec.
func (c JSON) DecodeSystemOutput(docID assessment.DocID, data []byte) (assessment.ArgumentOutput, error) {
	var doc SystemOutputDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return assessment.ArgumentOutput{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	output, err := doc.ArgumentOutput(docID)
	if err != nil {
		return assessment.ArgumentOutput{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return output, nil
}

// EncodeAnswerKey implements Codec.
func (JSON) EncodeAnswerKey(key assessment.AnswerKey, updatedAt utc.Time) ([]byte, error) {
	return json.MarshalIndent(NewAnswerKeyDocument(key, updatedAt), "", "  ")
}

// DecodeAnswerKey implements Codec.
func (c JSON) DecodeAnswerKey(docID assessment.DocID, data []byte) (assessment.AnswerKey, error) {
	var doc AnswerKeyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return assessment.AnswerKey{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	key, err := doc.AnswerKey(docID)
	if err != nil {
		return assessment.AnswerKey{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return key, nil
}
