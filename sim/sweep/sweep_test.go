package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSequenceFloat_ExhaustsAfterLastValue(t *testing.T) {
	s := &SequenceFloat{Values: []float64{1, 2}}

	assert.Equal(t, 1.0, s.Next().OrElse(-1))
	assert.Equal(t, 2.0, s.Next().OrElse(-1))
	assert.False(t, s.Next().Present())
}

func TestConstantFloat_NeverExhausts(t *testing.T) {
	c := ConstantFloat{Value: 3}
	for i := 0; i < 10; i++ {
		require.True(t, c.Next().Present())
	}
}

func TestSet_ShortestSequenceBoundsRuns(t *testing.T) {
	// GIVEN a scalar, a 3-value sequence and a 2-value sequence
	s := NewSet()
	s.AddFloat("num_cores", ConstantFloat{Value: 4})
	s.AddFloat("num_requests", &SequenceFloat{Values: []float64{100, 200, 300}})
	s.AddString("policy", &SequenceString{Values: []string{"jbsq", "cfcfs"}})

	// WHEN drawing points until exhaustion
	var points []Point
	for {
		p, ok := s.Next()
		if !ok {
			break
		}
		points = append(points, p)
	}

	// THEN exactly two runs are produced
	require.Len(t, points, 2)
	assert.Equal(t, 4.0, points[1].Floats["num_cores"])
	assert.Equal(t, 200.0, points[1].Floats["num_requests"])
	policy, ok := points[1].Text("policy")
	assert.True(t, ok)
	assert.Equal(t, "cfcfs", policy)
}

func TestSet_OnlyScalars_ExactlyOneRun(t *testing.T) {
	s := NewSet()
	s.AddFloat("num_cores", ConstantFloat{Value: 4})
	s.AddString("policy", ConstantString{Value: "jbsq"})

	_, ok := s.Next()
	require.True(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
	assert.False(t, s.Varying())
}

func TestParam_UnmarshalYAML_ScalarAndSequence(t *testing.T) {
	var cfg struct {
		A Param `yaml:"a"`
		B Param `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 5\nb: [1, 2.5, 3]\n"), &cfg))

	assert.False(t, cfg.A.IsSequence())
	assert.True(t, cfg.B.IsSequence())
	assert.Equal(t, 3, cfg.B.Len())

	src, err := cfg.B.Floats()
	require.NoError(t, err)
	assert.Equal(t, 2.5, func() float64 { src.Next(); return src.Next().OrElse(0) }())
}

func TestParam_UnmarshalYAML_RejectsNestedValues(t *testing.T) {
	var cfg struct {
		A Param `yaml:"a"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("a: {x: 1}\n"), &cfg))
	assert.Error(t, yaml.Unmarshal([]byte("a: [[1]]\n"), &cfg))
	assert.Error(t, yaml.Unmarshal([]byte("a: []\n"), &cfg))
}

func TestParam_Floats_NonNumeric_Error(t *testing.T) {
	_, err := Scalar("fast").Floats()
	assert.Error(t, err)
}

func TestParam_Strings_SequenceCopiesValues(t *testing.T) {
	p := Sequence("a", "b")
	src := p.Strings()
	assert.Equal(t, "a", src.Next().OrElse(""))
	assert.Equal(t, "b", src.Next().OrElse(""))
	assert.False(t, src.Next().Present())
}
