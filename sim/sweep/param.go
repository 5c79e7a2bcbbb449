package sweep

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Param is a configuration value written either as a scalar or as a YAML
// sequence of scalars. Values stay as text until the caller knows whether the
// parameter is numeric.
type Param struct {
	values []string
	isSeq  bool
}

// Scalar builds a single-valued Param.
func Scalar(v string) Param {
	return Param{values: []string{v}}
}

// Sequence builds a Param with one value per run.
func Sequence(vs ...string) Param {
	return Param{values: vs, isSeq: true}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.values = []string{node.Value}
		p.isSeq = false
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return fmt.Errorf("line %d: empty sequence", node.Line)
		}
		p.values = make([]string, 0, len(node.Content))
		for _, n := range node.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: sequence items must be scalars", n.Line)
			}
			p.values = append(p.values, n.Value)
		}
		p.isSeq = true
	default:
		return fmt.Errorf("line %d: expected a scalar or a sequence", node.Line)
	}
	return nil
}

// IsSet reports whether the parameter appeared in the configuration.
func (p Param) IsSet() bool {
	return len(p.values) > 0
}

// IsSequence reports whether the parameter varies between runs.
func (p Param) IsSequence() bool {
	return p.isSeq
}

// Len returns the number of values, 1 for a scalar.
func (p Param) Len() int {
	return len(p.values)
}

// Floats builds a FloatSource, failing on any non-numeric value.
func (p Param) Floats() (FloatSource, error) {
	vs := make([]float64, len(p.values))
	for i, s := range p.values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", s)
		}
		vs[i] = v
	}
	if !p.isSeq {
		return ConstantFloat{Value: vs[0]}, nil
	}
	return &SequenceFloat{Values: vs}, nil
}

// Strings builds a StringSource.
func (p Param) Strings() StringSource {
	if !p.isSeq {
		return ConstantString{Value: p.values[0]}
	}
	return &SequenceString{Values: append([]string(nil), p.values...)}
}
